package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/logger"
)

// progressDisplay renders conversion progress.
type progressDisplay interface {
	Update(ev domain.ProgressEvent)
	Done(ok bool)
}

// newProgressDisplay returns a bar for terminals and a log-only display
// otherwise.
func newProgressDisplay(w io.Writer, description string, interactive bool) progressDisplay {
	if !interactive {
		return logDisplay{}
	}
	bar := progressbar.NewOptions(domain.ProgressComplete,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &barDisplay{bar: bar}
}

type barDisplay struct {
	bar *progressbar.ProgressBar
}

func (d *barDisplay) Update(ev domain.ProgressEvent) {
	_ = d.bar.Set(ev.Percent) //nolint:errcheck // display only
}

func (d *barDisplay) Done(ok bool) {
	if ok {
		_ = d.bar.Finish() //nolint:errcheck // display only
		return
	}
	_ = d.bar.Clear() //nolint:errcheck // display only
}

type logDisplay struct{}

func (logDisplay) Update(ev domain.ProgressEvent) {
	logger.Debug("Progress %s: %d%%", ev.RequestID, ev.Percent)
}

func (logDisplay) Done(bool) {}
