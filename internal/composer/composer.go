package composer

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slidecast/internal/audiosync"
	"github.com/ivlev/slidecast/internal/config"
	"github.com/ivlev/slidecast/internal/frame"
	"github.com/ivlev/slidecast/internal/motion"
	"github.com/ivlev/slidecast/internal/source"
	"github.com/ivlev/slidecast/internal/subtitle"
	"github.com/ivlev/slidecast/internal/system"
	"github.com/ivlev/slidecast/internal/timeline"
	"github.com/ivlev/slidecast/internal/video"
)

// State — этап конвейера композиции. Переходы строго последовательные;
// в Failed можно попасть только из-за пустого входа, недоступного аудио,
// ошибки конфигурации или сбоя энкодера. Все остальные проблемы
// локализуются предупреждениями.
type State int

const (
	StateIdle State = iota
	StateImagesLoaded
	StateTimelineBuilt
	StateAudioReconciled
	StateSubtitlesApplied
	StateEncoded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImagesLoaded:
		return "images_loaded"
	case StateTimelineBuilt:
		return "timeline_built"
	case StateAudioReconciled:
		return "audio_reconciled"
	case StateSubtitlesApplied:
		return "subtitles_applied"
	case StateEncoded:
		return "encoded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Warning — деградация, не прервавшая запуск (пропущенный кадр, короткое
// аудио, выброшенный субтитр). Успешный запуск с предупреждениями — это
// всё ещё успешный запуск.
type Warning struct {
	Stage   string
	Message string
}

// Result — итог одного запуска композиции.
type Result struct {
	RunID      string
	OutputPath string
	Size       int64
	Duration   float64
	State      State
	Warnings   []Warning
}

// Request — входные данные одного запуска.
type Request struct {
	Source        source.Source
	AudioPath     string
	SubtitlesPath string // пусто = без субтитров
	OutputPath    string
}

// Composer последовательно проводит один запрос через весь конвейер и
// ровно один раз вызывает внешний энкодер. Промежуточные объекты и
// scratch-папка принадлежат запуску эксклюзивно и не переживают его.
type Composer struct {
	cfg *config.Config
	enc video.Encoder
	log zerolog.Logger
	rng *rand.Rand

	// probe подменяется в тестах, чтобы не требовать ffprobe.
	probe func(ctx context.Context, path string) (audiosync.Track, error)

	state State
}

func New(cfg *config.Config, enc video.Encoder, log zerolog.Logger) *Composer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Composer{
		cfg:   cfg,
		enc:   enc,
		log:   log,
		rng:   rand.New(rand.NewSource(seed)),
		probe: audiosync.Probe,
		state: StateIdle,
	}
}

// State возвращает текущий этап конвейера.
func (c *Composer) State() State { return c.state }

// Run выполняет полный цикл композиции. Ошибка означает полный провал:
// частичный результат удалён, scratch-папка вычищена.
func (c *Composer) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), OutputPath: req.OutputPath, State: StateIdle}
	c.state = StateIdle

	if err := c.cfg.Validate(); err != nil {
		return c.fail(res, err)
	}
	if c.cfg.SmoothTransitions {
		res.warn("timeline", "плавные переходы не реализованы, используется резкая смена кадров")
	}

	// Scratch-папка — единственный разделяемый ресурс; блокировка
	// гарантирует, что пространство имён принадлежит одному запуску.
	scratch := filepath.Join(os.TempDir(), "slidecast_"+res.RunID)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return c.fail(res, fmt.Errorf("scratch-папка: %w", err))
	}
	lock := flock.New(filepath.Join(scratch, ".lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		os.RemoveAll(scratch)
		return c.fail(res, fmt.Errorf("scratch-папка %s занята другим запуском", scratch))
	}
	defer func() {
		lock.Unlock()
		os.RemoveAll(scratch)
	}()

	// Этап 1: загрузка, нормализация и анимация кадров (параллельно).
	segments, err := c.prepareSegments(ctx, req.Source, scratch, res)
	if err != nil {
		return c.fail(res, err)
	}
	c.state = StateImagesLoaded

	// Этап 2: сборка таймлайна.
	if err := ctx.Err(); err != nil {
		return c.fail(res, err)
	}
	tl, err := timeline.Build(segments)
	if err != nil {
		return c.fail(res, err)
	}
	c.state = StateTimelineBuilt
	c.log.Info().Int("segments", len(tl.Spans)).Float64("duration", tl.Total).Msg("таймлайн собран")

	// Этап 3: сведение аудио с видео.
	if err := ctx.Err(); err != nil {
		return c.fail(res, err)
	}
	track, err := c.probe(ctx, req.AudioPath)
	if err != nil {
		return c.fail(res, err)
	}
	sync := audiosync.Reconcile(track, tl, audiosync.Policy(c.cfg.AudioSyncMode), c.cfg.MaxAudioLoops)
	for _, note := range sync.Notes {
		res.warn("audio", note)
	}
	c.state = StateAudioReconciled

	// Этап 4: субтитры поверх финального таймлайна.
	if err := ctx.Err(); err != nil {
		return c.fail(res, err)
	}
	overlays := c.buildOverlays(req.SubtitlesPath, sync.VideoDuration, res)
	c.state = StateSubtitlesApplied

	res.Duration = sync.VideoDuration

	if err := c.writeManifest(req, res, tl, sync, overlays); err != nil {
		res.warn("manifest", err.Error())
	}

	// Этап 5: единственный вызов энкодера.
	if err := ctx.Err(); err != nil {
		return c.fail(res, err)
	}
	encodeReq := c.buildEncodeRequest(req, tl, sync, overlays)
	if err := c.enc.Encode(ctx, encodeReq); err != nil {
		// Полный провал не оставляет частичного файла.
		os.Remove(req.OutputPath)
		return c.fail(res, err)
	}
	c.state = StateEncoded
	res.State = StateEncoded

	if info, err := os.Stat(req.OutputPath); err == nil {
		res.Size = info.Size()
	}
	return res, nil
}

// prepareSegments прогоняет нормализацию и моушен-эффект по всем кадрам
// в пуле воркеров. Направления зума вытягиваются из генератора заранее и
// последовательно — чтобы результат воспроизводился по seed независимо
// от порядка исполнения горутин. Результаты собираются по индексу:
// порядок сортировки имён — инвариант корректности.
func (c *Composer) prepareSegments(ctx context.Context, src source.Source, scratch string, res *Result) ([]motion.Segment, error) {
	count := src.Count()
	if count == 0 {
		return nil, &timeline.EmptyInputError{}
	}

	normalizer, err := frame.NewNormalizer(frame.Canvas{Width: c.cfg.Width, Height: c.cfg.Height}, scratch)
	if err != nil {
		return nil, &config.InvalidParameterError{Param: "resolution", Reason: err.Error()}
	}
	engine := motion.NewEngine(c.cfg.ZoomFactor, c.cfg.ZoomEnabled, c.cfg.RandomZoomDirection, c.rng)

	directions := make([]motion.Direction, count)
	for i := range directions {
		directions[i] = engine.NextDirection()
	}

	prepared := make([]*motion.Segment, count)
	notes := make([]string, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(system.WorkerCount(c.cfg.Workers))

	for i := 0; i < count; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			img, err := src.Image(i)
			if err != nil {
				notes[i] = fmt.Sprintf("кадр %s пропущен: %v", src.Name(i), err)
				return nil
			}

			nf := normalizer.Normalize(img)
			if nf.Degraded {
				notes[i] = fmt.Sprintf("кадр %s без масштабирования: %s", src.Name(i), nf.Note)
			}

			seg, err := engine.Apply(nf, c.cfg.ImageDuration, directions[i])
			if err != nil {
				return err
			}
			if seg.Note != "" && notes[i] == "" {
				notes[i] = fmt.Sprintf("кадр %s: %s", src.Name(i), seg.Note)
			}

			if err := normalizer.Persist(i, nf); err != nil {
				notes[i] = fmt.Sprintf("кадр %s пропущен: %v", src.Name(i), err)
				return nil
			}

			prepared[i] = &seg
			c.log.Debug().Str("frame", src.Name(i)).Str("zoom", seg.Direction.String()).Msg("кадр готов")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, note := range notes {
		if note != "" {
			res.warn("images", note)
		}
	}

	segments := make([]motion.Segment, 0, count)
	for _, seg := range prepared {
		if seg != nil {
			segments = append(segments, *seg)
		}
	}
	if len(segments) == 0 {
		return nil, &timeline.EmptyInputError{}
	}
	return segments, nil
}

// buildOverlays читает субтитры и обрезает их по финальной длительности.
// Любая проблема здесь — деградация, а не провал запуска.
func (c *Composer) buildOverlays(path string, finalDuration float64, res *Result) subtitle.OverlaySet {
	if path == "" {
		return subtitle.OverlaySet{}
	}

	cues, err := subtitle.ParseSRT(path)
	if err != nil {
		res.warn("subtitles", fmt.Sprintf("субтитры не загружены: %v", err))
		return subtitle.OverlaySet{}
	}

	layout := subtitle.Layout{
		Position:    c.cfg.SubtitlePosition,
		FontSize:    c.cfg.SubtitleFontSize,
		Color:       c.cfg.SubtitleColor,
		StrokeColor: c.cfg.SubtitleStrokeColor,
		StrokeWidth: c.cfg.SubtitleStrokeWidth,
		Margin:      c.cfg.SubtitleMargin,
		Font:        c.cfg.SubtitleFont,
	}

	set := subtitle.BuildOverlays(cues, finalDuration, layout)
	for _, note := range set.Notes {
		res.warn("subtitles", note)
	}
	if len(set.Overlays) == 0 && len(cues) > 0 {
		res.warn("subtitles", "ни один субтитр не попал в таймлайн, видео собирается без них")
	}
	return set
}

func (c *Composer) buildEncodeRequest(req Request, tl *timeline.Timeline, sync audiosync.Result, overlays subtitle.OverlaySet) video.Request {
	frames := make([]video.FrameInput, 0, len(tl.Spans))
	for _, span := range tl.Spans {
		frames = append(frames, video.FrameInput{
			Path:       span.Segment.Frame.ScratchPath,
			Duration:   span.Segment.Duration,
			ZoomFilter: span.Segment.ZoomFilter(c.cfg.Width, c.cfg.Height, c.cfg.FPS),
		})
	}

	return video.Request{
		Frames:     frames,
		Audio:      sync.Audio,
		Overlays:   overlays,
		Duration:   sync.VideoDuration,
		OutputPath: req.OutputPath,
		Params: video.Params{
			Width:        c.cfg.Width,
			Height:       c.cfg.Height,
			FPS:          c.cfg.FPS,
			VideoCodec:   c.cfg.VideoCodec,
			AudioCodec:   c.cfg.AudioCodec,
			VideoBitrate: c.cfg.VideoBitrate,
			AudioBitrate: c.cfg.AudioBitrate,
			Volume:       c.cfg.AudioVolume,
			FadeIn:       c.cfg.AudioFadeIn,
			FadeOut:      c.cfg.AudioFadeOut,
		},
	}
}

func (c *Composer) fail(res *Result, err error) (*Result, error) {
	c.state = StateFailed
	res.State = StateFailed
	return res, err
}

func (r *Result) warn(stage, message string) {
	r.Warnings = append(r.Warnings, Warning{Stage: stage, Message: message})
}
