package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// FFmpegMuxer пишет сырые RGBA-кадры в stdin ffmpeg и мультиплексирует их с
// дорожкой озвучки в один контейнер. Кадры идут без диска, как и в сегментном
// кодировании.
type FFmpegMuxer struct {
	ctx   context.Context
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   bytes.Buffer
}

func NewFFmpegMuxer(ctx context.Context) *FFmpegMuxer {
	return &FFmpegMuxer{ctx: ctx}
}

func (m *FFmpegMuxer) Start(opts Options) error {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}

	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath, "-c:a", "aac", "-shortest")
	} else if opts.MaxDuration > 0 {
		// Без аудио конец дорожки не наступит — ограничиваем по таймауту
		args = append(args, "-t", fmt.Sprintf("%f", opts.MaxDuration))
	}

	args = append(args, "-pix_fmt", "yuv420p", "-c:v", opts.Encoder)
	args = append(args, qualityArgs(opts.Encoder, opts.Quality)...)
	args = append(args, opts.OutputPath)

	m.cmd = exec.CommandContext(m.ctx, "ffmpeg", args...)
	m.log.Reset()
	m.cmd.Stdout = &m.log
	m.cmd.Stderr = &m.log

	stdin, err := m.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	m.stdin = stdin

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	return nil
}

func (m *FFmpegMuxer) WriteFrame(frame *image.RGBA) error {
	return writeRawRGBA(m.stdin, frame)
}

func (m *FFmpegMuxer) Finish() error {
	if m.cmd == nil {
		return nil
	}
	m.stdin.Close()
	if err := m.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %v\nLog: %s", err, m.log.String())
	}
	return nil
}

// qualityArgs выбирает параметры качества под конкретный энкодер.
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не всегда поддерживает -q:v. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
