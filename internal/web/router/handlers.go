package router

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/conduit-lang/assets/internal/assets"
	"github.com/conduit-lang/assets/internal/capability"
	"github.com/conduit-lang/assets/internal/codec"
	"github.com/conduit-lang/assets/internal/web/response"
)

var errMethodNotAllowed = errors.New("method not allowed")

// contentTypes lists the kinds that can be served and their media types.
// xmlpull is absent: a pull decoder is consumed by the first response.
var contentTypes = map[string]string{
	"text":   "text/plain; charset=utf-8",
	"stream": "application/octet-stream",
	"xml":    "application/xml",
	"xpath":  "application/xml",
	"yaml":   "application/yaml",
	"image":  "image/png",
}

const defaultKind = "text"

func (r *Router) stats(w http.ResponseWriter, _ *http.Request) {
	response.RenderJSON(w, http.StatusOK, r.cache.Stats())
}

func (r *Router) entries(w http.ResponseWriter, _ *http.Request) {
	entries := r.cache.Entries()
	if entries == nil {
		entries = []assets.EntryInfo{}
	}
	response.RenderJSON(w, http.StatusOK, entries)
}

func (r *Router) list(w http.ResponseWriter, req *http.Request) {
	if r.lister == nil {
		response.RenderError(w, http.StatusNotImplemented, errors.New("source cannot list assets"))
		return
	}
	names, err := r.lister.List(req.URL.Query().Get("pattern"))
	if err != nil {
		response.RenderBadRequest(w, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	response.RenderJSON(w, http.StatusOK, names)
}

func (r *Router) get(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "*")
	kind, tag, ok := requestKind(w, req)
	if !ok {
		return
	}
	contentType, ok := contentTypes[kind]
	if !ok {
		response.RenderBadRequest(w, fmt.Sprintf("kind %q cannot be served over HTTP", kind))
		return
	}

	v, err := r.cache.Get(name, tag)
	if err != nil {
		r.renderCacheError(w, name, err)
		return
	}

	// Cached streams are shared; read them through a private section.
	if s, ok := v.(*codec.Stream); ok {
		v = io.NewSectionReader(s, 0, s.Size())
	}

	var buf bytes.Buffer
	if err := r.writer.Write(&buf, v, tag); err != nil {
		if errors.Is(err, codec.ErrUnsupportedType) {
			response.RenderError(w, http.StatusNotAcceptable, err)
			return
		}
		r.logger.Error("encode asset", zap.String("name", name), zap.String("kind", kind), zap.Error(err))
		response.RenderInternalError(w, err)
		return
	}

	etag := generateETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	if matchesETag(req.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (r *Router) unload(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "*")
	_, tag, ok := requestKind(w, req)
	if !ok {
		return
	}
	if err := r.cache.Unload(name, tag); err != nil {
		r.renderCacheError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestKind(w http.ResponseWriter, req *http.Request) (string, capability.Tag, bool) {
	kind := req.URL.Query().Get("type")
	if kind == "" {
		kind = defaultKind
	}
	tag, ok := codec.KindTag(kind)
	if !ok {
		response.RenderBadRequest(w, fmt.Sprintf("unknown type %q, want one of %s", kind, strings.Join(codec.Kinds(), ", ")))
		return "", capability.Tag{}, false
	}
	return kind, tag, true
}

func (r *Router) renderCacheError(w http.ResponseWriter, name string, err error) {
	switch {
	case assets.IsAssetNotFound(err):
		response.RenderNotFound(w, err.Error())
	case errors.Is(err, assets.ErrEmptyName):
		response.RenderBadRequest(w, err.Error())
	case errors.Is(err, assets.ErrDisposed):
		response.RenderServiceUnavailable(w, err.Error())
	default:
		r.logger.Error("asset cache", zap.String("name", name), zap.Error(err))
		response.RenderInternalError(w, err)
	}
}

// generateETag returns a strong ETag over the first 16 bytes of the
// BLAKE2b-256 digest of content.
func generateETag(content []byte) string {
	sum := blake2b.Sum256(content)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// matchesETag reports whether an If-None-Match header matches etag. Weak
// validators compare equal to strong ones, as RFC 9110 requires for GET.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
