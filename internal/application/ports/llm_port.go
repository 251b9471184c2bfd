package ports

import "context"

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Claude, Gemini, mock) debe implementar esta interfaz; la aplicación
// arma el prompt y el adaptador solo se ocupa del transporte.
type LLMService interface {
	// GenerateInsights envía el prompt de sistema y el contexto del negocio al modelo y
	// devuelve el análisis en markdown. El contexto debe llevar un timeout.
	GenerateInsights(ctx context.Context, systemPrompt, businessContext string) (string, error)
}
