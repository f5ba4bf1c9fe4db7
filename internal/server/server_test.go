package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/order-assistant/internal/announce"
	"github.com/joseph-ayodele/order-assistant/internal/assembly"
	"github.com/joseph-ayodele/order-assistant/internal/export"
	"github.com/joseph-ayodele/order-assistant/internal/orders"
	"github.com/joseph-ayodele/order-assistant/internal/repository"
	"github.com/joseph-ayodele/order-assistant/internal/spreadsheet"
	"github.com/joseph-ayodele/order-assistant/internal/spreadsheet/sheettest"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
	"github.com/joseph-ayodele/order-assistant/internal/tts/google"
)

type harness struct {
	client   *Client
	conn     *grpc.ClientConn
	audioDir string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{DSN: "file:" + filepath.Join(t.TempDir(), "t.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	translate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3" + r.URL.Query().Get("q")))
	}))
	t.Cleanup(translate.Close)

	audioDir := t.TempDir()
	orch := tts.NewOrchestrator([]tts.Provider{google.New(google.Config{BaseURL: translate.URL, RPS: 1000})}, nil)

	orderRepo := repository.NewOrderRepository(db, nil)
	filterRepo := repository.NewFilterWordRepository(db, nil)
	orderSvc := orders.NewService(orderRepo, spreadsheet.NewExtractor(), nil, t.TempDir(), nil)
	asm := assembly.NewService(orderRepo, filterRepo, announce.NewAnnouncer(orch, audioDir))
	svc := NewOrderAssistant(orderSvc, asm, export.NewService(asm, nil), nil)

	srv := New(Config{AudioDir: audioDir}, svc, nil, nil)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.GRPC().Serve(lis) }()
	t.Cleanup(srv.GRPC().Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return harness{client: NewClient(conn), conn: conn, audioDir: audioDir}
}

func upload(t *testing.T, c *Client, number string, items ...sheettest.Item) *OrderResponse {
	t.Helper()
	path := sheettest.Write(t, t.TempDir(), "order.xlsx", number, items...)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	resp, err := c.UploadOrder(context.Background(), &UploadOrderRequest{Filename: "order.xlsx", Content: data})
	require.NoError(t, err)
	return resp
}

func TestOrderAssistant_Workflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client

	up := upload(t, c, "777",
		sheettest.Item{Name: "Молоко", Quantity: 2, Unit: "уп"},
		sheettest.Item{Name: "Пакет", Quantity: 1},
	)
	orderID := up.Order.ID
	require.Len(t, up.Order.Items, 2)

	list, err := c.ListOrders(ctx, &ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 2, list.Orders[0].ItemsCount)

	_, err = c.AddFilter(ctx, &AddFilterRequest{Word: "пакет"})
	require.NoError(t, err)
	filters, err := c.ListFilters(ctx, &ListFiltersRequest{})
	require.NoError(t, err)
	require.Len(t, filters.Filters, 1)

	prep, err := c.PrepareAssembly(ctx, &OrderRequest{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, 1, prep.Announced)
	assert.False(t, prep.Items[1].ShouldAnnounce)
	assert.Equal(t, announce.FilteredReason, prep.Items[1].FilteredReason)

	ann, err := c.AnnounceOrder(ctx, &OrderRequest{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "/audio/order_777.mp3", ann.AudioURL)
	assert.Equal(t, "google", ann.Provider)
	assert.FileExists(t, filepath.Join(h.audioDir, "order_777.mp3"))

	itemID := up.Order.Items[0].ID
	ann, err = c.AnnounceItem(ctx, &AnnounceItemRequest{ItemID: itemID})
	require.NoError(t, err)
	assert.Equal(t, "/audio/"+announce.ItemFileBase(itemID)+".mp3", ann.AudioURL)

	item, err := c.UpdateItemStatus(ctx, &UpdateItemStatusRequest{OrderID: orderID, ItemID: itemID, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", string(item.Item.Status))

	exp, err := c.ExportOrder(ctx, &OrderRequest{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "assembly_order_777.xlsx", exp.Filename)
	assert.NotEmpty(t, exp.Xlsx)

	done, err := c.CompleteOrder(ctx, &CompleteOrderRequest{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "assembled", string(done.Order.Status))

	_, err = c.DeleteFilter(ctx, &DeleteFilterRequest{FilterID: filters.Filters[0].ID})
	require.NoError(t, err)

	del, err := c.DeleteOrder(ctx, &OrderRequest{OrderID: orderID})
	require.NoError(t, err)
	assert.Equal(t, "777", del.Order.OrderNumber)

	_, err = c.GetOrder(ctx, &OrderRequest{OrderID: orderID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestOrderAssistant_ErrorCodes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.client

	upload(t, c, "42", sheettest.Item{Name: "Сыр", Quantity: 1})

	path := sheettest.Write(t, t.TempDir(), "dup.xlsx", "42", sheettest.Item{Name: "Сыр", Quantity: 1})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = c.UploadOrder(ctx, &UploadOrderRequest{Filename: "dup.xlsx", Content: data})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Equal(t, "Заказ № 42 уже существует", status.Convert(err).Message())

	_, err = c.UploadOrder(ctx, &UploadOrderRequest{Filename: "x.csv", Content: []byte("a,b")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.UploadOrder(ctx, &UploadOrderRequest{Filename: "x.xlsx"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.GetOrder(ctx, &OrderRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.AnnounceItem(ctx, &AnnounceItemRequest{ItemID: 999})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.AddFilter(ctx, &AddFilterRequest{Word: " "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthService(t *testing.T) {
	h := newHarness(t)
	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
