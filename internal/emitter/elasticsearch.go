package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// IndexerFactory creates a new BulkIndexer.
type IndexerFactory func(cfg config.ElasticsearchEmitterConfig) (esutil.BulkIndexer, error)

// ElasticsearchOption configures the ElasticsearchEmitter.
type ElasticsearchOption func(*ElasticsearchEmitter)

// WithIndexerFactory sets a custom factory for creating the BulkIndexer.
// This is primarily used for testing to inject a mock indexer.
func WithIndexerFactory(f IndexerFactory) ElasticsearchOption {
	return func(e *ElasticsearchEmitter) {
		e.factory = f
	}
}

// ElasticsearchEmitter indexes every report row as its own document.
type ElasticsearchEmitter struct {
	cfg     config.ElasticsearchEmitterConfig
	factory IndexerFactory
	indexer esutil.BulkIndexer
	host    string
	mu      sync.Mutex
	logger  logger.ILogger
}

// NewElasticsearchEmitter creates a new Elasticsearch emitter.
func NewElasticsearchEmitter(cfg config.ElasticsearchEmitterConfig, log logger.ILogger, opts ...ElasticsearchOption) *ElasticsearchEmitter {
	e := &ElasticsearchEmitter{
		cfg:    cfg,
		logger: log.SubLogger("ElasticsearchEmitter"),
	}

	// Documents carry the analyzing host.
	e.host, _ = os.Hostname()

	// Default factory creates real client and indexer
	e.factory = func(cfg config.ElasticsearchEmitterConfig) (esutil.BulkIndexer, error) {
		esCfg := elasticsearch.Config{
			Addresses: cfg.Addresses,
		}

		if cfg.Username != "" {
			esCfg.Username = cfg.Username
			esCfg.Password = cfg.Password
		}

		client, err := elasticsearch.NewClient(esCfg)
		if err != nil {
			return nil, fmt.Errorf("creating elasticsearch client: %w", err)
		}

		return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Client:        client,
			Index:         cfg.Index,
			NumWorkers:    2,
			FlushBytes:    5e+6, // 5MB
			FlushInterval: cfg.FlushInterval,
		})
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the emitter identifier.
func (e *ElasticsearchEmitter) Name() string {
	return "elasticsearch"
}

// Start initializes the Elasticsearch client and bulk indexer.
func (e *ElasticsearchEmitter) Start(ctx context.Context) error {
	indexer, err := e.factory(e.cfg)
	if err != nil {
		return err
	}
	e.indexer = indexer
	return nil
}

// Stop flushes and closes the bulk indexer. Rows the cluster rejected are
// reported as an error.
func (e *ElasticsearchEmitter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexer == nil {
		return nil
	}
	if err := e.indexer.Close(ctx); err != nil {
		return fmt.Errorf("closing bulk indexer: %w", err)
	}

	stats := e.indexer.Stats()
	e.logger.Infof("bulk indexing finished: indexed=%d failed=%d", stats.NumIndexed, stats.NumFailed)
	if stats.NumFailed > 0 {
		return fmt.Errorf("elasticsearch rejected %d report rows", stats.NumFailed)
	}
	return nil
}

// Emit adds one document per row of doc to the bulk indexer.
func (e *ElasticsearchEmitter) Emit(ctx context.Context, doc *report.Document) error {
	ts := doc.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	for _, s := range doc.Sections {
		for i, row := range s.Rows {
			body := map[string]any{
				"@timestamp": ts.UTC().Format(time.RFC3339Nano),
				"analysis":   doc.Name,
				"source":     doc.Source,
				"row":        i,
			}
			if e.host != "" {
				body["host"] = e.host
			}
			if name := sectionName(s); name != "" {
				body["section"] = name
			}
			if i < len(s.Lines) {
				body["message"] = s.Lines[i]
			}
			for k, v := range rowFields(s, row) {
				body[k] = v
			}

			data, err := json.Marshal(body)
			if err != nil {
				return err
			}

			err = e.indexer.Add(ctx, esutil.BulkIndexerItem{
				Action: "index",
				Body:   bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						e.logger.Errorf("indexing report row failed: analysis=%s error=%v", doc.Name, err)
						return
					}
					e.logger.Errorf("indexing report row failed: analysis=%s type=%s reason=%s", doc.Name, res.Error.Type, res.Error.Reason)
				},
			})
			if err != nil {
				return fmt.Errorf("adding report row: %w", err)
			}
		}
	}
	return nil
}
