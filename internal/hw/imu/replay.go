package imu

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cjeanneret/MotionFocus/internal/debug"
)

// Replay streams recorded samples, one "x y z" or "x,y,z" line each.
// Blank lines and lines starting with '#' are skipped, as is a header
// line that does not parse. interval paces the playback (0 = as fast as
// the consumer reads).
type Replay struct {
	r        io.Reader
	interval time.Duration
}

var _ Source = &Replay{}

func NewReplay(r io.Reader, interval time.Duration) *Replay {
	return &Replay{r: r, interval: interval}
}

// ParseLine parses one recorded line.
func ParseLine(line string) (Sample, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) < 3 {
		return Sample{}, errors.Errorf("expected 3 axis values, got %d in %q", len(fields), line)
	}

	var v [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Sample{}, errors.Wrapf(err, "axis %d", i)
		}
		v[i] = f
	}
	return NewSample(v[0], v[1], v[2]), nil
}

func (p *Replay) Stream(ctx context.Context) <-chan Sample {
	ch := make(chan Sample)
	go func() {
		defer close(ch)

		var tick <-chan time.Time
		if p.interval > 0 {
			ticker := time.NewTicker(p.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		scanner := bufio.NewScanner(p.r)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			s, err := ParseLine(line)
			if err != nil {
				if lineNo == 1 {
					continue // header
				}
				debug.Warn("replay: skipping line %d: %v", lineNo, err)
				continue
			}

			if tick != nil {
				select {
				case <-tick:
				case <-ctx.Done():
					return
				}
			}
			select {
			case ch <- s:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			debug.Error(errors.Wrap(err, "replay"))
		}
	}()
	return ch
}
