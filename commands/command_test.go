package commands

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"
)

func TestConfigure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lora-app-sheets.yaml")
	yaml := `
spreadsheet: https://docs.google.com/spreadsheets/d/1SDjUns8Wz5xxxxxxxxx/edit
sheet: HubData
retention:
  max-rows: 1000
  delete: 100
`
	if err := os.WriteFile(file, []byte(yaml), 0600); err != nil {
		t.Fatalf("Error creating configuration file (%v)", err)
	}

	cmd := command{
		sheet: "NewData",
	}

	conf, err := cmd.configure([]any{&Options{Config: file}})
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	if conf.Spreadsheet != "https://docs.google.com/spreadsheets/d/1SDjUns8Wz5xxxxxxxxx/edit" {
		t.Errorf("Incorrect spreadsheet URL %v", conf.Spreadsheet)
	}

	if conf.Sheet != "NewData" {
		t.Errorf("Command line did not override worksheet - expected:%v, got:%v", "NewData", conf.Sheet)
	}

	if r := retention(conf); r.MaxRows != 1000 || r.RowsToDelete != 100 {
		t.Errorf("Incorrect retention policy %+v", r)
	}
}

func TestConfigureWithInvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lora-app-sheets.yaml")
	if err := os.WriteFile(file, []byte("retention:\n  delete: 5000\n"), 0600); err != nil {
		t.Fatalf("Error creating configuration file (%v)", err)
	}

	cmd := command{}
	if _, err := cmd.configure([]any{&Options{Config: file}}); err == nil {
		t.Errorf("Expected error for invalid retention policy, got %v", err)
	}
}
