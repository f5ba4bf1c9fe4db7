package announce

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/order-assistant/internal/entity"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

// Synthesizer writes spoken text to a file.
type Synthesizer interface {
	SynthesizeToFile(ctx context.Context, text, outputPath string, opts tts.Options) (*tts.Artifact, error)
}

// Announcer renders order and item announcements into audioDir.
type Announcer struct {
	synth    Synthesizer
	audioDir string
}

func NewAnnouncer(synth Synthesizer, audioDir string) *Announcer {
	return &Announcer{synth: synth, audioDir: audioDir}
}

// AudioDir is where artifacts are written.
func (a *Announcer) AudioDir() string { return a.audioDir }

// Order renders "Заказ номер N" to order_<N>.<ext>.
func (a *Announcer) Order(ctx context.Context, orderNumber string) (*tts.Artifact, error) {
	out := filepath.Join(a.audioDir, OrderFileBase(orderNumber)+".mp3")
	return a.synth.SynthesizeToFile(ctx, OrderPhrase(orderNumber), out, tts.Options{})
}

// Item renders the item phrase to item_<id>.<ext>.
func (a *Announcer) Item(ctx context.Context, item entity.OrderItem) (*tts.Artifact, error) {
	out := filepath.Join(a.audioDir, ItemFileBase(item.ID)+".mp3")
	return a.synth.SynthesizeToFile(ctx, ItemPhrase(item.Name, item.Quantity), out, tts.Options{})
}

// Existing returns a previously rendered artifact for base in any known
// container.
func (a *Announcer) Existing(base string) (string, bool) {
	for _, f := range []tts.AudioFormat{tts.FormatOggOpus, tts.FormatMP3, tts.FormatWAV} {
		p := filepath.Join(a.audioDir, base+f.Ext)
		if st, err := os.Stat(p); err == nil && st.Size() > 0 {
			return p, true
		}
	}
	return "", false
}
