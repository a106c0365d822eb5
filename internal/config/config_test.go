package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"media-browser/internal/media"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Config{
		Paths:      Paths{Pictures: true, Videos: true},
		More:       []string{"/mnt/photos"},
		Extensions: []string{"jpg", "mp4"},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("config directory holds %d entries, want only the config file", len(entries))
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("paths: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got := Validate(Config{
		Paths:      Paths{Music: true},
		More:       []string{dir, "", filepath.Join(dir, "missing"), file, dir + string(filepath.Separator)},
		Extensions: []string{".JPG", "png", " ", "jpg"},
	})

	if !got.Paths.Music {
		t.Error("Validate() dropped Paths")
	}
	if !reflect.DeepEqual(got.More, []string{dir}) {
		t.Errorf("More = %v, want [%s]", got.More, dir)
	}
	if !reflect.DeepEqual(got.Extensions, []string{"jpg", "png"}) {
		t.Errorf("Extensions = %v", got.Extensions)
	}
}

func TestRoots(t *testing.T) {
	pictures := t.TempDir()
	extra := t.TempDir()
	t.Setenv("XDG_PICTURES_DIR", pictures)
	t.Setenv("XDG_VIDEOS_DIR", filepath.Join(t.TempDir(), "missing"))

	cfg := Config{
		Paths: Paths{Pictures: true, Videos: true},
		More:  []string{extra, pictures},
	}
	roots := cfg.Roots()

	want := []media.Rooted{
		media.NewRooted(media.RootPictures, pictures),
		media.NewRooted("", extra),
	}
	if !reflect.DeepEqual(roots, want) {
		t.Errorf("Roots() = %+v, want %+v", roots, want)
	}
}

func TestKnownRootDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_DOWNLOAD_DIR", "")

	got, err := KnownRootDir(media.RootDownloads)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "Downloads") {
		t.Errorf("KnownRootDir() = %s", got)
	}

	if _, err := KnownRootDir("elsewhere"); err == nil {
		t.Error("KnownRootDir() accepted an unknown root")
	}
}

func TestSet(t *testing.T) {
	var cfg Config
	steps := []struct {
		key, value string
		wantErr    bool
	}{
		{"paths.pictures", "true", false},
		{"paths.videos", "yes", true},
		{"paths.photos", "true", true},
		{"more", "/a, /b,", false},
		{"extensions", "jpg,png", false},
		{"colour", "blue", true},
	}
	for _, s := range steps {
		if err := cfg.Set(s.key, s.value); (err != nil) != s.wantErr {
			t.Errorf("Set(%q, %q) error = %v, wantErr %v", s.key, s.value, err, s.wantErr)
		}
	}

	if !cfg.Paths.Pictures || cfg.Paths.Videos {
		t.Errorf("Paths = %+v", cfg.Paths)
	}
	if !reflect.DeepEqual(cfg.More, []string{"/a", "/b"}) {
		t.Errorf("More = %v", cfg.More)
	}
	if got := cfg.AllowList(); !got.Allows("png") || got.Allows("mp4") {
		t.Errorf("AllowList() = %v", got.Sorted())
	}

	if err := cfg.Set("extensions", ""); err != nil {
		t.Fatal(err)
	}
	if !cfg.AllowList().Allows("mp4") {
		t.Error("clearing extensions did not restore defaults")
	}
}
