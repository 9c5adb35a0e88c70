// Package middleware содержит HTTP middleware витрины магазина.
package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// compressibleTypes перечисляет типы содержимого, ответы с которыми сжимаются.
var compressibleTypes = []string{"application/json", "text/html", "text/plain"}

type compressWriter struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	compress    bool
	wroteHeader bool
}

func (c *compressWriter) Header() http.Header {
	return c.w.Header()
}

func (c *compressWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true

	if statusCode != http.StatusNoContent && statusCode != http.StatusNotModified &&
		isCompressible(c.w.Header().Get("Content-Type")) {
		c.compress = true
		c.w.Header().Set("Content-Encoding", "gzip")
		c.w.Header().Del("Content-Length")
	}
	c.w.WriteHeader(statusCode)
}

func (c *compressWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		if c.w.Header().Get("Content-Type") == "" {
			c.w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		c.WriteHeader(http.StatusOK)
	}

	if !c.compress {
		return c.w.Write(p)
	}
	if c.zw == nil {
		c.zw = gzip.NewWriter(c.w)
	}
	return c.zw.Write(p)
}

func (c *compressWriter) Close() error {
	if c.zw != nil {
		return c.zw.Close()
	}
	return nil
}

type decompressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func (d *decompressReader) Read(p []byte) (int, error) {
	return d.zr.Read(p)
}

func (d *decompressReader) Close() error {
	if err := d.r.Close(); err != nil {
		return err
	}
	return d.zr.Close()
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// GzipMiddleware распаковывает тела запросов с Content-Encoding: gzip и сжимает ответы
// для клиентов, передающих Accept-Encoding: gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			r.Body = &decompressReader{r: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressWriter{w: w}
		defer cw.Close()

		next.ServeHTTP(cw, r)
	})
}
