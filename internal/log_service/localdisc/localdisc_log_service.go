package localdisc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnishMulay/memfs/internal/log_service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LocalDiscLogService writes JSON log lines to <logDir>/<nodeID>.log, or to
// stderr when logDir is empty.
type LocalDiscLogService struct {
	nodeID string
	logger *zap.Logger
	level  zap.AtomicLevel
	file   *os.File
}

func NewLocalDiscLogService(logDir string, nodeID string, minLogLevel ...string) (*LocalDiscLogService, error) {
	var (
		sink zapcore.WriteSyncer
		file *os.File
	)

	if logDir == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		filePath := filepath.Join(logDir, fmt.Sprintf("%s.log", nodeID))
		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		sink = zapcore.AddSync(f)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)

	service := &LocalDiscLogService{
		nodeID: nodeID,
		logger: zap.New(core).With(zap.String("node", nodeID)),
		level:  level,
		file:   file,
	}

	if len(minLogLevel) > 0 && minLogLevel[0] != "" {
		service.SetMinLogLevel(minLogLevel[0])
	}

	return service, nil
}

func (ls *LocalDiscLogService) SetMinLogLevel(level string) {
	ls.level.SetLevel(toZapLevel(log_service.GetLevelValue(level)))
}

func (ls *LocalDiscLogService) DisableFiltering() {
	ls.level.SetLevel(zapcore.DebugLevel)
}

// Close flushes buffered entries and releases the log file, if any.
func (ls *LocalDiscLogService) Close() error {
	_ = ls.logger.Sync()
	if ls.file != nil {
		return ls.file.Close()
	}
	return nil
}

func toZapLevel(value int) zapcore.Level {
	switch value {
	case log_service.InfoLevelValue:
		return zapcore.InfoLevel
	case log_service.WarnLevelValue:
		return zapcore.WarnLevel
	case log_service.ErrorLevelValue:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

func fields(event log_service.LogEvent) []zap.Field {
	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys)+1)
	if !event.Timestamp.IsZero() {
		out = append(out, zap.Time("event_ts", event.Timestamp))
	}
	for _, k := range keys {
		out = append(out, zap.Any(k, event.Metadata[k]))
	}
	return out
}

func (ls *LocalDiscLogService) Debug(event log_service.LogEvent) {
	ls.logger.Debug(event.Message, fields(event)...)
}

func (ls *LocalDiscLogService) Info(event log_service.LogEvent) {
	ls.logger.Info(event.Message, fields(event)...)
}

func (ls *LocalDiscLogService) Warn(event log_service.LogEvent) {
	ls.logger.Warn(event.Message, fields(event)...)
}

func (ls *LocalDiscLogService) Error(event log_service.LogEvent) {
	ls.logger.Error(event.Message, fields(event)...)
}

var _ log_service.LogService = (*LocalDiscLogService)(nil)
