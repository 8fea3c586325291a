/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"fmt"

	"nl2sql-agent/internal/config"
	"nl2sql-agent/internal/database"
	"nl2sql-agent/internal/embedding"
	"nl2sql-agent/internal/llm"
	"nl2sql-agent/internal/logging"
	"nl2sql-agent/internal/nl2sql"
	"nl2sql-agent/internal/vectorstore"
)

// components holds the long-lived handles built from configuration
type components struct {
	embedder embedding.Provider
	store    vectorstore.Store
	agent    *nl2sql.Agent
	clients  *database.ClientManager
}

// Close releases the vector store and database connections
func (c *components) Close() {
	if c.clients != nil {
		if err := c.clients.CloseAll(); err != nil {
			logging.Warn("database_close_failed", "error", err)
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logging.Warn("vector_store_close_failed", "error", err)
		}
	}
}

func embeddingConfig(cfg *config.Config) embedding.Config {
	return embedding.Config{
		Provider:      cfg.Embedding.Provider,
		Model:         cfg.Embedding.Model,
		MaxTokens:     cfg.Embedding.MaxTokens,
		OpenAIAPIKey:  cfg.Embedding.OpenAIAPIKey,
		OpenAIBaseURL: cfg.Embedding.OpenAIBaseURL,
		OllamaURL:     cfg.Embedding.OllamaURL,
		TEIURL:        cfg.Embedding.TEIURL,
	}
}

func vectorStoreConfig(cfg *config.Config) vectorstore.Config {
	return vectorstore.Config{
		Backend: cfg.VectorStore.Backend,
		Host:    cfg.VectorStore.Host,
		Port:    cfg.VectorStore.Port,
		APIKey:  cfg.VectorStore.APIKey,
		UseTLS:  cfg.VectorStore.UseTLS,
		Path:    cfg.VectorStore.Path,
	}
}

func llmConfig(cfg *config.Config) llm.Config {
	out := llm.Config{
		Provider:        cfg.LLM.Provider,
		Model:           cfg.LLM.Model,
		AzureEndpoint:   cfg.LLM.AzureEndpoint,
		AzureDeployment: cfg.LLM.AzureDeployment,
		AzureAPIVersion: cfg.LLM.AzureAPIVersion,
	}
	switch cfg.LLM.Provider {
	case "azure":
		out.APIKey = cfg.LLM.AzureAPIKey
	case "openai":
		out.APIKey = cfg.LLM.OpenAIAPIKey
		out.BaseURL = cfg.LLM.OpenAIBaseURL
	case "anthropic":
		out.APIKey = cfg.LLM.AnthropicAPIKey
	case "ollama":
		out.BaseURL = cfg.LLM.OllamaURL
	}
	return out
}

// embeddingMaxTokens reports the input ceiling applied before embedding,
// or 0 when inputs are sent untruncated
func embeddingMaxTokens(p embedding.Provider) int {
	if t, ok := p.(*embedding.Truncating); ok {
		return t.MaxTokens()
	}
	return 0
}

// buildRetrieval creates the embedder and vector store
func buildRetrieval(cfg *config.Config) (*components, error) {
	embedder, err := embedding.NewProvider(embeddingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	store, err := vectorstore.Open(vectorStoreConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	return &components{embedder: embedder, store: store}, nil
}

// buildComponents wires the full question pipeline. The database client
// manager is only created when execution targets are configured.
func buildComponents(cfg *config.Config) (*components, error) {
	c, err := buildRetrieval(cfg)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(llmConfig(cfg))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retriever := nl2sql.NewRetriever(c.embedder, c.store, cfg.VectorStore.Collection, cfg.Retrieval.Limit)
	synthesizer := nl2sql.NewSynthesizer(completer, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	pipeline := nl2sql.NewPipeline(retriever, synthesizer)

	var executor nl2sql.Executor
	if len(cfg.Databases) > 0 {
		c.clients = database.NewClientManager(cfg.Databases)
		executor = c.clients
	}
	summarizer := nl2sql.NewSummarizer(completer, cfg.LLM.Temperature, cfg.LLM.MaxTokens)

	c.agent = nl2sql.NewAgent(pipeline, executor, summarizer)

	logging.Info("agent_ready",
		"embedding_provider", c.embedder.ProviderName(),
		"embedding_model", c.embedder.ModelName(),
		"embedding_max_tokens", embeddingMaxTokens(c.embedder),
		"vector_store", cfg.VectorStore.Backend,
		"collection", cfg.VectorStore.Collection,
		"llm_provider", cfg.LLM.Provider,
		"databases", len(cfg.Databases),
	)
	return c, nil
}
