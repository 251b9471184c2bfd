package ai

import (
	"net/http"
	"strings"
	"time"
)

// Límite de lectura de la respuesta del proveedor.
const maxResponseBytes = 256 * 1024

// transport agrupa lo que comparten los adaptadores REST: URL base y cliente HTTP.
type transport struct {
	baseURL    string
	httpClient *http.Client
}

// Option ajusta el transporte de un adaptador.
type Option func(*transport)

// WithBaseURL reemplaza el endpoint del proveedor (proxy corporativo o servidor de pruebas).
func WithBaseURL(url string) Option {
	return func(t *transport) { t.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient reemplaza el cliente HTTP.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) { t.httpClient = c }
}

func newTransport(baseURL string, opts []Option) transport {
	t := transport{
		baseURL: baseURL,
		// Timeout de red; el use case impone además su propio context.WithTimeout.
		httpClient: &http.Client{Timeout: 45 * time.Second},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// stripFence quita el bloque ```markdown ... ``` con el que algunos modelos envuelven la respuesta.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	after := text[3:]
	if nl := strings.Index(after, "\n"); nl != -1 {
		after = after[nl+1:]
	}
	if end := strings.LastIndex(after, "```"); end != -1 {
		after = after[:end]
	}
	return strings.TrimSpace(after)
}
