package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sseedwings2026/0114-shortform/internal/capture"
	"github.com/sseedwings2026/0114-shortform/internal/compositor"
	"github.com/sseedwings2026/0114-shortform/internal/config"
	"github.com/sseedwings2026/0114-shortform/internal/gen"
	"github.com/sseedwings2026/0114-shortform/internal/player"
	"github.com/sseedwings2026/0114-shortform/internal/script"
	"github.com/sseedwings2026/0114-shortform/internal/server"
	"github.com/sseedwings2026/0114-shortform/internal/source"
	"github.com/sseedwings2026/0114-shortform/internal/system"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Ключи генерации берём из .env, если он есть
	godotenv.Load()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/scenes", "assets", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	generatePtr := flag.Bool("generate", false, "Сгенерировать сценарий, сцены и озвучку по теме (-topic)")
	topicPtr := flag.String("topic", "", "Тема ролика для режима генерации")
	sceneCountPtr := flag.Int("scene-count", 5, "Число сцен при генерации (хук + тело + аутро)")
	servePtr := flag.Bool("serve", false, "Поднять HTTP API плеера вместо офлайн-рендера")
	addrPtr := flag.String("addr", ":8080", "Адрес HTTP API")

	scriptPtr := flag.String("script", "assets/script.yaml", "Путь к YAML со сценарием")
	scenesPtr := flag.String("scenes", "", "Путь к сценам: папка с изображениями или PDF-раскадровка (по умолчанию assets/scenes, затем input/scenes)")
	audioPtr := flag.String("audio", "", "Путь к озвучке (по умолчанию assets/narration.mp3, затем самый свежий файл в input/audio/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется по названию в output/)")
	widthPtr := flag.Int("width", 720, "Ширина")
	heightPtr := flag.Int("height", 1280, "Высота")
	fpsPtr := flag.Int("fps", 30, "FPS")
	presetPtr := flag.String("preset", "", "Пресет формата: 9:16 (Shorts/TikTok), 16:9, 4:5 (Instagram)")
	maxCharsPtr := flag.Int("max-chars", 24, "Бюджет символов на один субтитр")
	stylePtr := flag.String("style", "", "Путь к YAML со стилем субтитров")
	dpiPtr := flag.Int("dpi", 150, "DPI рендера PDF-раскадровки")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки генерации сцен")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF, VideoToolbox: битрейт = Q*100кбит/с)")
	fallbackPtr := flag.Float64("fallback-duration", 30, "Длительность, если озвучки нет (сек)")
	statsPtr := flag.Bool("stats", false, "Печатать отчет о времени рендера")

	flag.Parse()

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "9:16":
		width, height = 720, 1280
	case "16:9":
		width, height = 1280, 720
	case "4:5":
		width, height = 1080, 1350
	}

	if *generatePtr {
		if *topicPtr == "" {
			log.Fatal("[-] Режим генерации требует -topic")
		}
		runGenerate(*topicPtr, *sceneCountPtr, *workersPtr)
		return
	}

	doc, err := script.ReadDocument(*scriptPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сценария: %v", err)
	}

	scenesPath := *scenesPtr
	if scenesPath == "" {
		if _, err := os.Stat("assets/scenes"); err == nil {
			scenesPath = "assets/scenes"
		} else if latest, err := system.FindLatestScenes("input/scenes"); err == nil {
			scenesPath = latest
			fmt.Printf("[*] Выбраны сцены: %s\n", scenesPath)
		} else {
			log.Fatalf("[-] Ошибка: %v. Положите изображения в input/scenes/", err)
		}
	}

	src, err := source.Open(scenesPath, *dpiPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации сцен: %v", err)
	}
	defer src.Close()

	if src.Count() == 0 {
		log.Fatal("[-] Ошибка: источник сцен пуст")
	}

	audioPath := *audioPtr
	if audioPath == "" {
		if _, err := os.Stat("assets/narration.mp3"); err == nil {
			audioPath = "assets/narration.mp3"
		} else if latest, err := system.FindLatestAudio("input/audio"); err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}

	// Длительность таймлайна — строго по озвучке; фоллбэк только когда
	// дорожки нет вовсе
	totalDuration := 0.0
	if audioPath != "" {
		if dur, err := system.GetAudioDuration(audioPath); err == nil {
			totalDuration = dur
			fmt.Printf("[*] Длительность по озвучке: %.2fs\n", totalDuration)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}
	if totalDuration <= 0 {
		totalDuration = *fallbackPtr
		fmt.Printf("[!] Озвучка недоступна, используется фоллбэк: %.2fs\n", totalDuration)
	}

	captions := timeline.Map(doc.Script, totalDuration, *maxCharsPtr)
	if len(captions) == 0 {
		log.Fatal("[-] Ошибка: сценарий не дал ни одного субтитра")
	}

	style := config.DefaultStyle()
	if *stylePtr != "" {
		style, err = config.ReadStyle(*stylePtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения стиля: %v", err)
		}
	}

	comp, err := compositor.New(width, height, style)
	if err != nil {
		log.Fatalf("[-] Ошибка компоновщика: %v", err)
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		cleanName := strings.ReplaceAll(doc.Title, " ", "_")
		if cleanName == "" {
			cleanName = "shortform"
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	cfg := &config.Config{
		ScriptPath:       *scriptPtr,
		ScenesPath:       scenesPath,
		AudioPath:        audioPath,
		OutputVideo:      finalOutput,
		TotalDuration:    totalDuration,
		Width:            width,
		Height:           height,
		FPS:              *fpsPtr,
		Workers:          *workersPtr,
		MaxCaptionLen:    *maxCharsPtr,
		Preset:           *presetPtr,
		VideoEncoder:     encoderName,
		Quality:          quality,
		StylePath:        *stylePtr,
		ServeAddr:        *addrPtr,
		ShowStats:        *statsPtr,
		FallbackDuration: *fallbackPtr,
	}

	scenes, err := source.LoadAll(src)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки сцен: %v", err)
	}

	snap := &player.Snapshot{
		Title:     doc.Title,
		Captions:  captions,
		Scenes:    scenes,
		Duration:  totalDuration,
		AudioPath: audioPath,
	}

	fmt.Println("--- [SHORTFORM: CAPTION RENDER ENGINE] ---")
	fmt.Printf("[*] Сценарий: %s | Сцен: %d | Субтитров: %d\n", *scriptPtr, len(scenes), len(captions))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs\n", width, height, *fpsPtr, totalDuration)
	fmt.Println("------------------------------------------")

	if *servePtr {
		runServe(cfg, comp, snap)
		return
	}

	runRender(cfg, comp, snap)
}

func runGenerate(topic string, sceneCount, workers int) {
	fmt.Println("[*] Режим генерации ассетов...")

	producer := &gen.Producer{
		Scripts: gen.NewScriptClient(mustEnv("GEMINI_API_KEY")),
		Images:  gen.NewImageClient(mustEnv("IMAGEFX_AUTH_TOKEN")),
		Speech: gen.NewSpeechClient(
			mustEnv("ELEVENLABS_API_KEY"),
			config.GetEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		),
		Workers: workers,
	}

	assets, err := producer.Produce(context.Background(), topic, "assets", sceneCount)
	if err != nil {
		log.Fatalf("[-] Ошибка генерации: %v", err)
	}

	fmt.Printf("[+++] Успех! Сценарий: %s | Сцены: %s | Озвучка: %s\n",
		assets.ScriptPath, assets.ScenesDir, assets.AudioPath)
}

func runRender(cfg *config.Config, comp *compositor.Compositor, snap *player.Snapshot) {
	startTime := time.Now()

	rec := capture.NewRecorder(capture.NewFFmpegMuxer(context.Background()))
	opts := capture.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		FPS:         cfg.FPS,
		AudioPath:   snap.AudioPath,
		OutputPath:  cfg.OutputVideo,
		Encoder:     cfg.VideoEncoder,
		Quality:     cfg.Quality,
		MaxDuration: snap.Duration,
	}
	if err := rec.Start(opts); err != nil {
		log.Fatalf("[-] Ошибка захвата: %v", err)
	}

	lastReport := 0
	player.Render(comp, snap, rec, cfg.FPS, func(done, total int) {
		// Печатаем прогресс раз в секунду таймлайна
		if done-lastReport >= cfg.FPS || done == total {
			fmt.Printf("[>] Кадры: %d/%d\n", done, total)
			lastReport = done
		}
	})

	path, err := rec.Stop()
	if err != nil {
		log.Fatalf("[-] Ошибка финализации: %v", err)
	}

	if cfg.ShowStats {
		totalTime := time.Since(startTime)
		frames := int(snap.Duration * float64(cfg.FPS))
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Total Time: %.2fs\n"+
				"Frames: %d\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			totalTime.Seconds(), frames, float64(frames)/totalTime.Seconds(),
		)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", path)
}

func runServe(cfg *config.Config, comp *compositor.Compositor, snap *player.Snapshot) {
	p := player.New(comp, player.NewWallClock(), cfg.FPS)
	p.Load(snap)

	rec := capture.NewRecorder(capture.NewFFmpegMuxer(context.Background()))
	srv := server.New(p, rec, cfg)

	if err := srv.ListenAndServe(cfg.ServeAddr); err != nil {
		log.Fatalf("[-] Ошибка сервера: %v", err)
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[-] Не задан %s (ожидается в окружении или .env)", key)
	}
	return v
}
