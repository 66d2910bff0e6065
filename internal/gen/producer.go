package gen

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sseedwings2026/0114-shortform/internal/script"
	"github.com/sseedwings2026/0114-shortform/internal/system"
)

// Assets are the on-disk products of one generation run, laid out the way
// the render and serve modes expect them.
type Assets struct {
	Doc        *script.Document
	ScriptPath string
	ScenesDir  string
	AudioPath  string
}

// Producer runs the full generation pipeline: script, scene stills and the
// narration track. It is the only place that retries anything; failures
// reaching the caller are already classified.
type Producer struct {
	Scripts *ScriptClient
	Images  *ImageClient
	Speech  *SpeechClient
	Workers int
}

// Produce generates all assets for a topic under outDir.
func (p *Producer) Produce(ctx context.Context, topic, outDir string, sceneCount int) (*Assets, error) {
	if sceneCount < 3 {
		sceneCount = 3
	}

	fmt.Printf("[*] Генерация сценария: %q\n", topic)
	result, err := p.Scripts.Generate(ctx, topic, sceneCount)
	if err != nil {
		return nil, err
	}

	scenesDir := filepath.Join(outDir, "scenes")
	if err := os.MkdirAll(scenesDir, 0755); err != nil {
		return nil, err
	}

	// Сцены генерируются параллельно; лимит по памяти, т.к. каждый воркер
	// держит декодированный кадр
	workers := system.SuggestWorkers(p.Workers, 4*1080*1920)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0
	total := len(result.ImagePrompts)

	for i, prompt := range result.ImagePrompts {
		g.Go(func() error {
			img, err := p.Images.Generate(gctx, prompt)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}

			path := filepath.Join(scenesDir, fmt.Sprintf("scene_%02d.png", i))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			mu.Lock()
			done++
			fmt.Printf("[>] Сцена готова: %d/%d\n", done, total)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Println("[*] Синтез озвучки...")
	narration := strings.Join([]string{result.Script.Hook, result.Script.Body, result.Script.Outro}, " ")
	audio, err := p.Speech.Synthesize(ctx, narration)
	if err != nil {
		return nil, err
	}
	audioPath := filepath.Join(outDir, "narration.mp3")
	if err := os.WriteFile(audioPath, audio, 0644); err != nil {
		return nil, err
	}

	doc := &script.Document{
		Title:        result.Title,
		Script:       result.Script,
		ImagePrompts: result.ImagePrompts,
		BGMPrompt:    result.BGMPrompt,
	}
	scriptPath := filepath.Join(outDir, "script.yaml")
	if err := script.WriteDocument(doc, scriptPath); err != nil {
		return nil, err
	}

	return &Assets{
		Doc:        doc,
		ScriptPath: scriptPath,
		ScenesDir:  scenesDir,
		AudioPath:  audioPath,
	}, nil
}
