package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/pdfchat/data/db/chunks.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/pdfchat/data/indices/vectors"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.LLM.Token == "" {
		cfg.LLM.Token = "none"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.2"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "bge-small-en-v1.5"
	}
	if cfg.LLM.Dimensions == 0 {
		cfg.LLM.Dimensions = 384
	}
	if cfg.LLM.CacheSize == 0 {
		cfg.LLM.CacheSize = 10000
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}
	if cfg.Retrieval.LookupFetchK == 0 {
		cfg.Retrieval.LookupFetchK = 10
	}
	if cfg.Retrieval.LookupKeep == 0 {
		cfg.Retrieval.LookupKeep = 5
	}
	if cfg.Retrieval.SummarizeBudget == 0 {
		cfg.Retrieval.SummarizeBudget = 30
	}
	if cfg.Retrieval.SummarizeFallbackK == 0 {
		cfg.Retrieval.SummarizeFallbackK = 20
	}
	if cfg.Retrieval.FingerprintLength == 0 {
		cfg.Retrieval.FingerprintLength = 100
	}
}
