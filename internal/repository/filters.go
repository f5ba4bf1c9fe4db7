package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
)

const tableFilterWords = "filter_words"

// MaxFilterWordLength bounds a filter word in runes.
const MaxFilterWordLength = 100

type FilterWordRepository interface {
	// List returns all words, newest first.
	List(ctx context.Context) ([]entity.FilterWord, error)
	// Create stores a trimmed, non-empty word of at most MaxFilterWordLength
	// runes. Duplicates yield ErrConflict.
	Create(ctx context.Context, word string) (*entity.FilterWord, error)
	Delete(ctx context.Context, id int64) error
}

type filterWordRepository struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewFilterWordRepository(db *DB, logger *slog.Logger) FilterWordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &filterWordRepository{db: db, now: time.Now, logger: logger}
}

func (r *filterWordRepository) List(ctx context.Context) ([]entity.FilterWord, error) {
	b := r.db.builder()
	q, args := b.Select("id", "word", "created_at").
		From(b.Table(tableFilterWords)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list filter words", "error", err)
		return nil, wrapDBError(err, "list filter words")
	}
	defer rows.Close()

	var out []entity.FilterWord
	for rows.Next() {
		var fw entity.FilterWord
		if err := rows.Scan(&fw.ID, &fw.Word, timeScanner{&fw.CreatedAt}); err != nil {
			return nil, wrapDBError(err, "scan filter word")
		}
		out = append(out, fw)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "list filter words")
	}
	return out, nil
}

func (r *filterWordRepository) Create(ctx context.Context, word string) (*entity.FilterWord, error) {
	word = strings.TrimSpace(word)
	v := common.NewValidator().Field("word", word, common.Required, common.MaxLength(MaxFilterWordLength))
	if err := v.Error(); err != nil {
		return nil, err
	}

	fw := &entity.FilterWord{Word: word, CreatedAt: r.now().UTC()}
	q, args := r.db.builder().Insert(tableFilterWords).
		Columns("word", "created_at").
		Values(fw.Word, fw.CreatedAt).
		Returning("id").
		Query()
	if err := r.db.SQL().QueryRowContext(ctx, q, args...).Scan(&fw.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewAppError("CONFLICT", "Это слово уже в списке фильтров", common.ErrConflict)
		}
		r.logger.Error("failed to create filter word", "word", word, "error", err)
		return nil, wrapDBError(err, "create filter word")
	}
	return fw, nil
}

func (r *filterWordRepository) Delete(ctx context.Context, id int64) error {
	q, args := r.db.builder().Delete(tableFilterWords).Where(entsql.EQ("id", id)).Query()
	res, err := r.db.SQL().ExecContext(ctx, q, args...)
	if err != nil {
		return wrapDBError(err, "delete filter word")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("NOT_FOUND", "filter word not found", common.ErrNotFound)
	}
	return nil
}
