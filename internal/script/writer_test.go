package script

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDocumentWriteRead(t *testing.T) {
	doc := &Document{
		Title: "Почему кошки мурлыкают",
		Script: Content{
			Hook:  "Вы не поверите, зачем кошки мурлыкают.",
			Body:  "Частота мурлыканья укрепляет кости. Кошки лечат сами себя.",
			Outro: "Подписывайтесь, дальше интереснее!",
		},
		ImagePrompts: []string{"cat close up", "sound waves", "happy cat"},
		BGMPrompt:    "calm lo-fi",
	}

	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := WriteDocument(doc, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("Round trip mismatch:\n  wrote %+v\n  read  %+v", doc, got)
	}
}

func TestReadDocumentRejectsEmptyScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := os.WriteFile(path, []byte("title: empty\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDocument(path); err == nil {
		t.Error("Expected rejection of a document with no narration")
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
