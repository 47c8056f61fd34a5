package engine

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// progressReader turns ffmpeg -progress key=value output into percentages of
// the expected output duration. Emitted values are clamped to [0,100] and
// never decrease.
type progressReader struct {
	expected float64
	sink     func(float64)
	last     float64
	emitted  bool
}

func newProgressReader(expectedSeconds float64, sink func(float64)) *progressReader {
	return &progressReader{expected: expectedSeconds, sink: sink}
}

func (p *progressReader) consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			// ffmpeg reports microseconds under both keys.
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil || p.expected <= 0 {
				continue
			}
			p.emit(float64(us) / 1e6 / p.expected * 100)
		case "progress":
			if value == "end" {
				p.emit(100)
			}
		}
	}
	return scanner.Err()
}

func (p *progressReader) emit(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if p.emitted && percent <= p.last {
		return
	}
	p.last = percent
	p.emitted = true
	if p.sink != nil {
		p.sink(percent)
	}
}

// finish reports completion if the engine never said so.
func (p *progressReader) finish() {
	p.emit(100)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(b []byte) (int, error) {
	t.buf = append(t.buf, b...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(b), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
