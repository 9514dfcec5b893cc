package cli

import (
	"os"

	"github.com/gosuri/uiprogress"
)

// progressBar renders on stderr so stdout stays clean for records
type progressBar struct {
	progress *uiprogress.Progress
	bar      *uiprogress.Bar
}

// startProgress starts a bar over total steps. A disabled or empty bar is a
// no-op.
func startProgress(total int, enabled bool) *progressBar {
	if !enabled || total == 0 {
		return &progressBar{}
	}

	p := uiprogress.New()
	p.Out = os.Stderr
	bar := p.AddBar(total).AppendCompleted().PrependElapsed()
	p.Start()
	return &progressBar{progress: p, bar: bar}
}

func (b *progressBar) Incr() {
	if b.bar != nil {
		b.bar.Incr()
	}
}

func (b *progressBar) Stop() {
	if b.progress != nil {
		b.progress.Stop()
	}
}
