package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "gridctl"}
	root.PersistentFlags().String("api-url", "", "")
	root.PersistentFlags().String("token", "", "")
	root.PersistentFlags().String("profile", "", "")
	return root
}

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	f, err := Load()
	if err != nil {
		t.Fatalf("load fresh: %v", err)
	}
	if f.Active != "default" || len(f.Profiles) != 0 {
		t.Fatalf("fresh config: %+v", f)
	}

	f.Profiles["prod"] = Profile{Name: "prod", APIURL: "https://fg.example.com", Token: "tok"}
	f.Active = "prod"
	if err := f.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	f2, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f2.Active != "prod" || f2.Profiles["prod"].APIURL != "https://fg.example.com" {
		t.Fatalf("reload: %+v", f2)
	}
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRIDCTL_API_URL", "")
	t.Setenv("GRIDCTL_TOKEN", "")

	f, _ := Load()
	f.Profiles["default"] = Profile{Name: "default", APIURL: "http://profile", Token: "ptok"}
	if err := f.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	root := testRoot()
	r, err := Resolve(root)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.APIURL != "http://profile" || r.Token != "ptok" {
		t.Fatalf("profile fallback: %+v", r)
	}

	t.Setenv("GRIDCTL_API_URL", "http://env")
	if r, _ = Resolve(root); r.APIURL != "http://env" {
		t.Fatalf("env must beat profile: %+v", r)
	}

	root.PersistentFlags().Set("api-url", "http://flag")
	if r, _ = Resolve(root); r.APIURL != "http://flag" {
		t.Fatalf("flag must beat env: %+v", r)
	}
}

func TestResolveMissingURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRIDCTL_API_URL", "")
	t.Setenv("GRIDCTL_TOKEN", "")

	if _, err := Resolve(testRoot()); err == nil {
		t.Fatal("missing URL must error")
	}
}
