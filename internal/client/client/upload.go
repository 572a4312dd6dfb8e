package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
)

const (
	fieldTitle = "title"
	fieldPDF   = "pdf"
)

// uploadBody streams a multipart form with a known length: the title field,
// then the pdf part read straight from disk.
type uploadBody struct {
	io.Reader
	file        io.Closer
	size        int64
	contentType string
}

func newUploadBody(req UploadRequest) (*uploadBody, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField(fieldTitle, req.Title); err != nil {
		return nil, err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldPDF, req.File.Name))
	h.Set("Content-Type", "application/pdf")
	if _, err := mw.CreatePart(h); err != nil {
		return nil, err
	}
	headLen := buf.Len()

	if err := mw.Close(); err != nil {
		return nil, err
	}
	all := buf.Bytes()
	head, tail := all[:headLen], all[headLen:]

	f, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.File.Name, err)
	}

	return &uploadBody{
		Reader:      io.MultiReader(bytes.NewReader(head), io.LimitReader(f, req.File.Size), bytes.NewReader(tail)),
		file:        f,
		size:        int64(len(head)) + req.File.Size + int64(len(tail)),
		contentType: mw.FormDataContentType(),
	}, nil
}

func (b *uploadBody) Close() error {
	return b.file.Close()
}

// progressReader reports cumulative bytes read as the transport consumes them.
type progressReader struct {
	r     io.Reader
	total int64

	mu   sync.Mutex
	sent int64
	fn   ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.fn(sent, p.total)
	}
	return n, err
}
