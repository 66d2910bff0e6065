package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// SuggestWorkers ограничивает число параллельных воркеров (генерация сцен,
// кодирование) по доступной памяти: каждый воркер держит в памяти кадр RGBA
// плюс буферы ffmpeg, примерно frameBytes*4.
func SuggestWorkers(requested int, frameBytes uint64) int {
	if requested < 1 {
		requested = 1
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return requested
	}

	perWorker := frameBytes * 4
	if perWorker == 0 {
		return requested
	}

	fits := int(vm.Available / perWorker)
	if fits < 1 {
		fits = 1
	}
	if fits < requested {
		fmt.Printf("[!] Воркеры ограничены по памяти: %d вместо %d\n", fits, requested)
		return fits
	}
	return requested
}

// GetAudioDuration measures a media file's duration with ffprobe.
func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// FindLatestAudio returns the most recently modified audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}, "аудио-файлов")
}

// FindLatestScenes returns the most recently modified scene input in dir:
// either a storyboard PDF or the directory itself when it holds images.
func FindLatestScenes(dir string) (string, error) {
	if pdf, err := findLatest(dir, []string{".pdf"}, ""); err == nil {
		return pdf, nil
	}
	if _, err := findLatest(dir, []string{".jpg", ".jpeg", ".png"}, ""); err == nil {
		return dir, nil
	}
	return "", fmt.Errorf("в папке %s не найдено сцен (изображений или PDF)", dir)
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		if kind == "" {
			kind = "подходящих файлов"
		}
		return "", fmt.Errorf("в папке %s не найдено %s", dir, kind)
	}

	return latestFile, nil
}

func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)

	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	for _, enc := range encoders {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}
