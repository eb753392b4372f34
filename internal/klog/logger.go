// Package klog provides the kernel's component loggers: one *logrus.Entry
// per subsystem (task, timer, mtx, flg, bar, simport, ...), all sharing a
// root logger whose level, format and destination are set once at boot.
package klog

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultUseJSON          = false
	DefaultLevel            = "info"
	DefaultDisableSrcFile   = false
	DefaultLogFile          = "" // empty means stderr
	DefaultLogFileMaxSizeMB = 10
	DefaultLogFileMaxBackup = 1

	defaultLevel       = logrus.InfoLevel
	timestampFormat    = time.RFC3339
	componentFieldName = "comp"
)

// CollectableLogger wraps logrus.Logger with a cached debug-enabled flag,
// letting call sites skip building expensive debug-only payloads when the
// level would just discard them. The collectable interface (GetOutput,
// GetLevel, SetLevel) is what internal/klog's test collector hooks into.
type CollectableLogger struct {
	logrus.Logger
	IsEnabledForDebug bool
}

func (log *CollectableLogger) GetOutput() io.Writer { return log.Out }
func (log *CollectableLogger) GetLevel() any        { return log.Logger.GetLevel() }

func (log *CollectableLogger) SetLevel(level any) {
	if lvl, ok := level.(logrus.Level); ok {
		log.Logger.SetLevel(lvl)
		log.IsEnabledForDebug = log.IsLevelEnabled(logrus.DebugLevel)
	}
}

// Config is the YAML-facing logging configuration.
type Config struct {
	UseJSON             bool   `yaml:"use_json"`
	Level               string `yaml:"level"`
	DisableSrcFile      bool   `yaml:"disable_src_file"`
	LogFile             string `yaml:"log_file"`
	LogFileMaxSizeMB    int    `yaml:"log_file_max_size_mb"`
	LogFileMaxBackupNum int    `yaml:"log_file_max_backup_num"`
}

func DefaultConfig() *Config {
	return &Config{
		UseJSON:             DefaultUseJSON,
		Level:               DefaultLevel,
		DisableSrcFile:      DefaultDisableSrcFile,
		LogFile:             DefaultLogFile,
		LogFileMaxSizeMB:    DefaultLogFileMaxSizeMB,
		LogFileMaxBackupNum: DefaultLogFileMaxBackup,
	}
}

// moduleDirPathCache strips the module's own source root off logged file
// paths, falling back to keeping the last N directories for anything else
// (e.g. stdlib frames) that slips through ReportCaller.
type moduleDirPathCache struct {
	mu         sync.Mutex
	prefixList []string
	keepNDirs  int
}

func (p *moduleDirPathCache) addPrefix(prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.prefixList {
		if existing == prefix {
			return
		}
	}
	p.prefixList = append(p.prefixList, prefix)
	sort.Slice(p.prefixList, func(i, j int) bool {
		return len(p.prefixList[i]) > len(p.prefixList[j])
	})
}

func (p *moduleDirPathCache) stripPrefix(filePath string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, prefix := range p.prefixList {
		if strings.HasPrefix(filePath, prefix) {
			return filePath[len(prefix):]
		}
	}
	comps := strings.Split(filePath, "/")
	keep := p.keepNDirs + 1
	if keep < 1 {
		keep = 1
	}
	if keep < len(comps) {
		filePath = path.Join(comps[len(comps)-keep:]...)
	}
	return filePath
}

var dirPathCache = &moduleDirPathCache{keepNDirs: 1}

// addCallerSrcPathPrefix records the module's source root, upNDirs
// directories above this file, so it can be stripped from every logged
// caller path.
func addCallerSrcPathPrefix(upNDirs int) {
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	prefix := path.Dir(file)
	for i := 0; i < upNDirs; i++ {
		prefix = path.Dir(prefix)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	dirPathCache.addPrefix(prefix)
}

type funcFilePair struct {
	function string
	file     string
}

type funcFileCache struct {
	mu    sync.Mutex
	cache map[uintptr]*funcFilePair
}

func (c *funcFileCache) prettyfy(f *runtime.Frame) (function, file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ff := c.cache[f.PC]
	if ff == nil {
		ff = &funcFilePair{file: fmt.Sprintf("%s:%d", dirPathCache.stripPrefix(f.File), f.Line)}
		c.cache[f.PC] = ff
	}
	return ff.function, ff.file
}

var callerCache = &funcFileCache{cache: make(map[uintptr]*funcFilePair)}

// fieldKeySortOrder fixes the field order readers of this kernel's logs
// see: time, level, component, file, func, everything else alphabetically,
// message last.
var fieldKeySortOrder = map[string]int{
	logrus.FieldKeyTime:  -5,
	logrus.FieldKeyLevel: -4,
	componentFieldName:   -3,
	logrus.FieldKeyFile:  -2,
	logrus.FieldKeyFunc:  -1,
	logrus.FieldKeyMsg:   1,
}

type sortableFieldKeys struct{ keys []string }

func (d *sortableFieldKeys) Len() int      { return len(d.keys) }
func (d *sortableFieldKeys) Swap(i, j int) { d.keys[i], d.keys[j] = d.keys[j], d.keys[i] }
func (d *sortableFieldKeys) Less(i, j int) bool {
	oi, oj := fieldKeySortOrder[d.keys[i]], fieldKeySortOrder[d.keys[j]]
	if oi != 0 || oj != 0 {
		return oi < oj
	}
	return strings.Compare(d.keys[i], d.keys[j]) < 0
}

func sortFieldKeys(keys []string) { sort.Sort(&sortableFieldKeys{keys}) }

var textFormatter = &logrus.TextFormatter{
	DisableColors:    true,
	FullTimestamp:    true,
	TimestampFormat:  timestampFormat,
	CallerPrettyfier: callerCache.prettyfy,
	SortingFunc:      sortFieldKeys,
}

var jsonFormatter = &logrus.JSONFormatter{
	TimestampFormat:  timestampFormat,
	CallerPrettyfier: callerCache.prettyfy,
}

// Root is the process-wide logger every component logger derives from.
var Root = &CollectableLogger{
	Logger: logrus.Logger{
		Out:          os.Stderr,
		Formatter:    textFormatter,
		Level:        defaultLevel,
		ReportCaller: true,
	},
}

func init() {
	addCallerSrcPathPrefix(2)
}

// Configure applies cfg to the root logger: level, format, caller
// reporting and output destination (stderr, stdout, or a rotated file via
// lumberjack).
func Configure(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("klog: %w", err)
		}
		Root.SetLevel(level)
	}

	if cfg.UseJSON {
		Root.SetFormatter(jsonFormatter)
	} else {
		Root.SetFormatter(textFormatter)
	}
	Root.SetReportCaller(!cfg.DisableSrcFile)

	switch cfg.LogFile {
	case "stderr":
		Root.SetOutput(os.Stderr)
	case "stdout":
		Root.SetOutput(os.Stdout)
	case "":
	default:
		logDir := path.Dir(cfg.LogFile)
		if _, err := os.Stat(logDir); err != nil {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				return fmt.Errorf("klog: %w", err)
			}
		}
		_, statErr := os.Stat(cfg.LogFile)
		forceRotate := statErr == nil
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackupNum,
		}
		if forceRotate {
			if err := lj.Rotate(); err != nil {
				return fmt.Errorf("klog: %w", err)
			}
		}
		Root.SetOutput(lj)
	}
	return nil
}

// Comp returns a logger entry for component name, tagged with the "comp"
// field so log readers can filter by subsystem (task, timer, mtx, flg,
// bar, simport, ...).
func Comp(name string) *logrus.Entry {
	return Root.WithField(componentFieldName, name)
}
