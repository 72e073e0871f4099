package spooldir

import (
	"bytes"
	"encoding/gob"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hpcloud/tail"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cast"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
	_join "hive/pkg/join"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

var (
	ScanProperty       = properties.NewRequiredProperty[string]("scan", "watch this directory for N-Quads files")
	BackupProperty     = properties.NewProperty[string]("backup", "if backup is empty, remove file after combine", "")
	PatternProperty    = properties.NewProperty[string]("pattern", "regex pattern", `.*\.nq$`)
	ConcurrentProperty = properties.NewProperty[int]("concurrent", "combine number", 1)
	StreamProperty     = properties.NewProperty[string]("stream", "stream name, empty uses the file name without extension", "")
	TimestampProperty  = properties.NewProperty[string]("timestamp", "object, the object literal, or read, the time a line was read", "object")
)

type source struct {
	ctx         hive.Context
	logger      hive.Logger
	scanDir     string
	backupDir   string
	stream      string
	readTime    bool
	pattern     *regexp.Regexp
	combinePool *ants.PoolWithFunc

	emitNext hive.EmitNext
	state    sync.Map
	inflight sync.Map
	mutex    sync.Mutex
}

func (s *source) Snapshot() ([]byte, error) {
	var buffer bytes.Buffer
	s.mutex.Lock()
	defer s.mutex.Unlock()
	snapshotMap := map[Identify]int64{}
	s.state.Range(func(key, value any) bool {
		snapshotMap[key.(Identify)] = value.(int64)
		return true
	})
	if err := gob.NewEncoder(&buffer).Encode(&snapshotMap); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (s *source) Restore(snapshot []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	snapshotMap := map[Identify]int64{}
	if err := gob.NewDecoder(bytes.NewReader(snapshot)).Decode(&snapshotMap); err != nil {
		return err
	}
	for key, value := range snapshotMap {
		s.state.Store(key, value)
	}
	return nil
}

func (s *source) Open(ctx hive.Context) (err error) {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	s.scanDir = ctx.Properties().GetString(ScanProperty)
	s.backupDir = ctx.Properties().GetString(BackupProperty)
	s.stream = ctx.Properties().GetString(StreamProperty)
	s.readTime = ctx.Properties().GetString(TimestampProperty) == "read"

	s.pattern, err = regexp.Compile(ctx.Properties().GetString(PatternProperty))
	if err != nil {
		return err
	}

	s.combinePool, err = ants.NewPoolWithFunc(ctx.Properties().GetInt(ConcurrentProperty),
		func(arg interface{}) {
			s.combine(cast.ToString(arg))
		},
		ants.WithLogger(&log.TailLoggerWrapper{Logger: s.logger}),
		ants.WithPanicHandler(func(reason interface{}) {
			if reason != nil {
				s.logger.Errorw("combine panic.", "reason", reason)
			}
		}))
	return err
}

func (s *source) Close() error {
	s.combinePool.Release()
	return nil
}

func (s *source) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{ScanProperty, BackupProperty, PatternProperty, ConcurrentProperty, StreamProperty, TimestampProperty}
}

func (s *source) Collect(emitNext hive.EmitNext) error {
	s.emitNext = emitNext
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err = watcher.Add(s.scanDir); err != nil {
		return err
	}
	if err := s.recoveryCombine(); err != nil {
		return err
	}
	for {
		select {
		case <-s.ctx.Done():
			return watcher.Close()
		case e := <-watcher.Events:
			if e.Op&fsnotify.Create == fsnotify.Create {
				s.logger.Infof("scan to new files:%s.", e.Name)
				if s.pattern.MatchString(e.Name) {
					s.submitCombine(e.Name)
				}
			}
		case err = <-watcher.Errors:
			s.logger.Warnw("watch file system failed.", "err", err)
		}
	}
}

func (s *source) submitCombine(filePath string) {
	if _, loaded := s.inflight.LoadOrStore(filePath, struct{}{}); loaded {
		return
	}
	if err := s.combinePool.Invoke(filePath); err != nil {
		s.logger.Errorw("submit combine task error, skip file.", "path", filePath, "err", err)
		s.inflight.Delete(filePath)
	}
}

// recoveryCombine combines the files already spooled, resuming from saved offsets.
func (s *source) recoveryCombine() error {
	return filepath.WalkDir(s.scanDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.scanDir {
				return filepath.SkipDir
			}
			return nil
		}
		if s.pattern.MatchString(path) {
			s.submitCombine(path)
		}
		return nil
	})
}

func (s *source) streamOf(filePath string) string {
	if s.stream != "" {
		return s.stream
	}
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *source) emitLine(filePath string, line *tail.Line) {
	text := strings.TrimSpace(line.Text)
	if text == "" || strings.HasPrefix(text, "#") {
		return
	}
	q, err := quad.Parse(text)
	if err != nil {
		s.logger.Warnw("line is not N-Quads, skip it.", "path", filePath, "err", err)
		return
	}
	ts := line.Time.UnixMilli()
	if !s.readTime {
		objectTs, ok := _join.ObjectLiteral.Timestamp(q)
		if !ok {
			s.logger.Debugw("object has no timestamp, skip fact.", "path", filePath, "quad", text)
			return
		}
		ts = int64(objectTs)
	}
	event := observation.New(s.streamOf(filePath), q, ts)
	event.Meta["file"] = filePath
	s.emitNext(event, nil)
}

func (s *source) combine(filePath string) {
	defer s.inflight.Delete(filePath)
	fileId, err := convertPathToIdentify(filePath)
	if err != nil {
		s.logger.Errorw("can't convert to identify,skip file.", "path", filePath, "err", err)
		return
	}
	var offset int64 = 0
	if offsetI, ok := s.state.Load(fileId); ok {
		offset = offsetI.(int64)
	}
	tailFile, err := tail.TailFile(filePath, tail.Config{
		Location: &tail.SeekInfo{
			Offset: offset,
			Whence: io.SeekStart,
		},
		Logger: &log.TailLoggerWrapper{Logger: s.logger}})
	if err != nil {
		s.logger.Errorw("tail error, skip this file.", "path", filePath, "err", err)
		return
	}
	for {
		select {
		case line, ok := <-tailFile.Lines:
			if !ok {
				s.logger.Debugf("combine %s done, start afterCombine.", filePath)
				s.afterCombine(filePath, fileId)
				return
			}
			if line.Err != nil {
				s.logger.Warnw("tail line error.", "path", filePath, "err", line.Err)
				continue
			}
			s.emitLine(filePath, line)
		case <-s.ctx.Done():
			s.logger.Info("ctx done, stopping tail and save position to state.")
			tell, err := tailFile.Tell()
			if err != nil {
				s.logger.Errorw("un tell file, state error.", "err", err)
			} else {
				s.state.Store(fileId, tell)
			}
			_ = tailFile.Stop()
			return
		}
	}
}

func (s *source) afterCombine(filePath string, fileId Identify) {
	if s.backupDir == "" {
		if err := os.Remove(filePath); err != nil {
			s.logger.Errorw("can't remove.", "path", filePath, "err", err)
			return
		}
	} else {
		backupPath := path.Join(s.backupDir, path.Base(filePath)+time.Now().Format(".20060102150405"))
		if err := os.Rename(filePath, backupPath); err != nil {
			s.logger.Errorw("can't rename", "path", filePath, "err", err)
			return
		}
	}
	s.state.Delete(fileId)
	s.logger.Debugf("after combine %s.", filePath)
}

func New() hive.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("spooldir", New)
}
