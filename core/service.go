package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	store           ConfigStore
	auditLog        AuditLog
	ledger          TokenLedger
	proofValidator  ProofValidator
	recordLocker    RecordLocker
	now             func() time.Time
	newID           func() string
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	ConfigStore     ConfigStore
	AuditLog        AuditLog
	TokenLedger     TokenLedger
	ProofValidator  ProofValidator
	RecordLocker    RecordLocker
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("issuance", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("issuance"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.proofValidator == nil {
		builder.proofValidator = BasicProofValidator{}
	}
	if builder.recordLocker == nil {
		builder.recordLocker = NewMemoryRecordLocker()
	}
	if builder.configStore == nil {
		builder.configStore = NewMemoryConfigStore()
	}
	if builder.auditLog == nil {
		if reader, ok := builder.configStore.(AuditLog); ok {
			builder.auditLog = reader
		}
	}
	if builder.clock == nil {
		builder.clock = func() time.Time { return time.Now().UTC() }
	}
	if builder.idGenerator == nil {
		builder.idGenerator = uuid.NewString
	}
	if builder.ledger == nil {
		return nil, mapBuildError(builder.errorMapper, BadInputError("core: token ledger is required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		store:           builder.configStore,
		auditLog:        builder.auditLog,
		ledger:          builder.ledger,
		proofValidator:  builder.proofValidator,
		recordLocker:    builder.recordLocker,
		now:             builder.clock,
		newID:           builder.idGenerator,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		ConfigStore:     s.store,
		AuditLog:        s.auditLog,
		TokenLedger:     s.ledger,
		ProofValidator:  s.proofValidator,
		RecordLocker:    s.recordLocker,
	}
}

func (s *Service) GetConfig(ctx context.Context, configID string) (cfg IssuanceConfig, err error) {
	startedAt := time.Now().UTC()
	configID = s.resolveConfigID(configID)
	fields := map[string]any{"config_id": configID}
	defer func() {
		s.observeOperation(ctx, startedAt, OperationGetConfig, err, fields)
	}()

	cfg, err = s.store.Get(ctx, configID)
	if err != nil {
		err = s.mapError(err)
		return IssuanceConfig{}, err
	}
	return cfg, nil
}

// Status returns the read model of one record, including its lifecycle state.
func (s *Service) Status(ctx context.Context, configID string) (status SystemStatus, err error) {
	startedAt := time.Now().UTC()
	configID = s.resolveConfigID(configID)
	fields := map[string]any{"config_id": configID}
	defer func() {
		s.observeOperation(ctx, startedAt, OperationStatus, err, fields)
	}()

	cfg, err := s.store.Get(ctx, configID)
	if err != nil {
		err = s.mapError(err)
		return SystemStatus{}, err
	}
	return cfg.Status(), nil
}

func (s *Service) ListAuditEvents(ctx context.Context, filter AuditFilter) (page AuditPage, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"config_id": filter.ConfigID}
	defer func() {
		s.observeOperation(ctx, startedAt, OperationListAuditEvents, err, fields)
	}()

	if s.auditLog == nil {
		err = s.mapError(BadInputError("core: audit log is not configured"))
		return AuditPage{}, err
	}
	page, err = s.auditLog.ListEvents(ctx, filter)
	if err != nil {
		err = s.mapError(err)
		return AuditPage{}, err
	}
	fields["total"] = page.Total
	return page, nil
}

// VerifyAuditChain recomputes the content identifiers of a record's history
// and checks the chain against the record's head.
func (s *Service) VerifyAuditChain(ctx context.Context, configID string) (report ChainReport, err error) {
	startedAt := time.Now().UTC()
	configID = s.resolveConfigID(configID)
	fields := map[string]any{"config_id": configID}
	defer func() {
		s.observeOperation(ctx, startedAt, OperationVerifyChain, err, fields)
	}()

	if s.auditLog == nil {
		err = s.mapError(BadInputError("core: audit log is not configured"))
		return ChainReport{ConfigID: configID}, err
	}
	cfg, err := s.store.Get(ctx, configID)
	if err != nil {
		err = s.mapError(err)
		return ChainReport{ConfigID: configID}, err
	}
	events, err := s.auditLog.EventsFor(ctx, configID)
	if err != nil {
		err = s.mapError(err)
		return ChainReport{ConfigID: configID}, err
	}
	if uint64(len(events)) != cfg.Sequence {
		err = s.mapError(AuditChainBrokenError("core: record %q reports %d events but %d are stored", configID, cfg.Sequence, len(events)))
		return ChainReport{ConfigID: configID, Events: len(events)}, err
	}
	report, err = VerifyChain(configID, events, cfg.HeadCID)
	if err != nil {
		err = s.mapError(err)
		return report, err
	}
	fields["events"] = report.Events
	return report, nil
}

func (s *Service) resolveConfigID(configID string) string {
	configID = strings.TrimSpace(configID)
	if configID != "" {
		return configID
	}
	if id := strings.TrimSpace(s.config.DefaultConfigID); id != "" {
		return id
	}
	return DefaultConfigID
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
