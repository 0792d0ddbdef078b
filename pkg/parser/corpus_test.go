package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/frontc/frontc/pkg/preproc"
	"gopkg.in/yaml.v3"
)

// TestCorpusValid runs every C file in testdata/corpus through the builtin
// preprocessor shim and the parser and expects a clean parse.
func TestCorpusValid(t *testing.T) {
	files, err := filepath.Glob("../../testdata/corpus/*.c")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no corpus files found")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := preproc.File(file, preproc.Options{})
			if err != nil {
				t.Fatalf("preprocess: %v", err)
			}
			tu, _, err := Parse(src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(tu.Defs) == 0 {
				t.Error("translation unit is empty")
			}
		})
	}
}

// corpusExpectations is the corpus.yaml file structure
type corpusExpectations struct {
	Invalid []struct {
		File  string `yaml:"file"`
		Error string `yaml:"error"`
	} `yaml:"invalid"`
}

// TestCorpusInvalid checks that each fixture under testdata/corpus/invalid
// fails with the diagnostic kind corpus.yaml names for it.
func TestCorpusInvalid(t *testing.T) {
	data, err := os.ReadFile("../../testdata/corpus.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var exp corpusExpectations
	if err := yaml.Unmarshal(data, &exp); err != nil {
		t.Fatalf("corpus.yaml: %v", err)
	}

	listed := map[string]string{}
	for _, e := range exp.Invalid {
		listed[e.File] = e.Error
	}

	files, err := filepath.Glob("../../testdata/corpus/invalid/*.c")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		base := filepath.Base(file)
		if _, ok := listed[base]; !ok {
			t.Errorf("%s has no entry in corpus.yaml", base)
		}
	}

	for _, e := range exp.Invalid {
		t.Run(e.File, func(t *testing.T) {
			src, err := preproc.File(filepath.Join("../../testdata/corpus/invalid", e.File), preproc.Options{})
			if err != nil {
				t.Fatalf("preprocess: %v", err)
			}
			_, _, err = Parse(src)
			var diag *Diagnostic
			if !errors.As(err, &diag) {
				t.Fatalf("expected a %s diagnostic, got %v", e.Error, err)
			}
			if diag.Kind.String() != e.Error {
				t.Errorf("diagnostic kind = %s, want %s (%v)", diag.Kind, e.Error, diag)
			}
		})
	}
}
