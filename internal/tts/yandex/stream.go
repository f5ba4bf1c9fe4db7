package yandex

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"iter"

	"github.com/PaesslerAG/jsonpath"
)

const (
	audioChunkPath = "$.result.audioChunk.data"
	maxLineSize    = 16 << 20
)

// chunkStream decodes the NDJSON body of utteranceSynthesis into audio
// fragments. Blank lines are ignored. Lines that are not JSON, carry no audio,
// hold invalid base64 or exceed maxLine bytes are skipped and counted.
type chunkStream struct {
	r       *bufio.Reader
	maxLine int
	skipped int
	err     error
}

func newChunkStream(r io.Reader) *chunkStream {
	return &chunkStream{r: bufio.NewReaderSize(r, 64<<10), maxLine: maxLineSize}
}

// All yields decoded fragments in arrival order. It can be ranged once.
func (s *chunkStream) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			line, tooLong, err := s.readLine()
			if tooLong {
				s.skipped++
			} else if line = bytes.TrimSpace(line); len(line) > 0 {
				frag, ok := decodeLine(line)
				if !ok {
					s.skipped++
				} else if !yield(frag) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.err = err
				}
				return
			}
		}
	}
}

// readLine returns the next line without its newline. A line longer than
// maxLine is consumed up to its newline and reported as tooLong.
func (s *chunkStream) readLine() (line []byte, tooLong bool, err error) {
	var buf []byte
	for {
		part, err := s.r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(part) > s.maxLine+1 {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, part...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimSuffix(buf, []byte("\n")), tooLong, err
	}
}

// Err reports a read error that ended the stream early.
func (s *chunkStream) Err() error { return s.err }

// Skipped is the number of non-blank lines that produced no fragment.
func (s *chunkStream) Skipped() int { return s.skipped }

func decodeLine(line []byte) ([]byte, bool) {
	var doc any
	if err := json.Unmarshal(line, &doc); err != nil {
		return nil, false
	}
	v, err := jsonpath.Get(audioChunkPath, doc)
	if err != nil {
		return nil, false
	}
	data, ok := v.(string)
	if !ok || data == "" {
		return nil, false
	}
	frag, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(frag) == 0 {
		return nil, false
	}
	return frag, true
}

// collect concatenates every fragment of the stream.
func collect(s *chunkStream) ([]byte, error) {
	var buf bytes.Buffer
	for frag := range s.All() {
		buf.Write(frag)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
