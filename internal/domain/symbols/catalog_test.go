package symbols

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	convey.Convey("Given the built-in catalog", t, func() {
		c := Default()

		convey.Convey("It lists the categories in their original order", func() {
			convey.So(c.Names(), convey.ShouldResemble, []string{"Home", "Action", "Emotions", "Words", "Food"})
		})

		convey.Convey("Every row is eight cells wide", func() {
			convey.So(c.Validate(), convey.ShouldBeNil)
			words, err := c.Grid("Words")
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(words), convey.ShouldEqual, 7)
			convey.So(words[0], convey.ShouldResemble, []string{"I", "You", "He", "She", "We", "They", "It", "Me"})
		})

		convey.Convey("Grid returns a copy", func() {
			home, _ := c.Grid("Home")
			home[0][0] = "changed"
			again, _ := c.Grid("Home")
			convey.So(again[0][0], convey.ShouldEqual, "Yes")
		})

		convey.Convey("Unknown categories are reported", func() {
			_, err := c.Grid("Sports")
			convey.So(errors.Is(err, ErrUnknownCategory), convey.ShouldBeTrue)
			convey.So(c.Has("Sports"), convey.ShouldBeFalse)
			convey.So(c.Has("Food"), convey.ShouldBeTrue)
		})
	})
}

func TestNewValidation(t *testing.T) {
	row := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	tests := []struct {
		name string
		cats []Category
		want error
	}{
		{"empty", nil, ErrEmptyCatalog},
		{"short row", []Category{{Name: "A", Rows: model.Grid{row[:7]}}}, ErrInvalidRow},
		{"long row", []Category{{Name: "A", Rows: model.Grid{append(row, "i")}}}, ErrInvalidRow},
		{"no rows", []Category{{Name: "A"}}, ErrEmptyCategory},
		{"no name", []Category{{Name: " ", Rows: model.Grid{row}}}, ErrUnnamedCategory},
		{"duplicate", []Category{{Name: "A", Rows: model.Grid{row}}, {Name: "A", Rows: model.Grid{row}}}, ErrDuplicateCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cats...); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	convey.Convey("Given a YAML catalog", t, func() {
		doc := []byte(`
categories:
  - name: Drinks
    rows:
      - [Water, Juice, Tea, Coffee, Milk, Soda, Beer, Wine]
  - name: Answers
    rows:
      - ["Yes", "No", Maybe, Later, Now, Again, Done, More]
      - [1, 2, 3, 4, 5, 6, 7, 8]
`)
		c, err := Parse(doc)

		convey.So(err, convey.ShouldBeNil)
		convey.So(c.Names(), convey.ShouldResemble, []string{"Drinks", "Answers"})
		grid, err := c.Grid("Answers")
		convey.So(err, convey.ShouldBeNil)
		convey.So(grid[0][0], convey.ShouldEqual, "Yes")
		convey.So(grid[1][7], convey.ShouldEqual, "8")
	})

	convey.Convey("Given a catalog with a ragged row", t, func() {
		_, err := Parse([]byte("categories:\n  - name: A\n    rows:\n      - [a, b]\n"))
		convey.So(errors.Is(err, ErrInvalidRow), convey.ShouldBeTrue)
	})

	convey.Convey("Given malformed YAML", t, func() {
		_, err := Parse([]byte("categories: [\n"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestWriteAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")
	if err := Default().WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	want := Default().all()
	got := loaded.all()
	if len(got) != len(want) {
		t.Fatalf("categories = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("category %d = %q, want %q", i, got[i].Name, want[i].Name)
		}
		for r := range want[i].Rows {
			for col := range want[i].Rows[r] {
				if got[i].Rows[r][col] != want[i].Rows[r][col] {
					t.Errorf("%s[%d][%d] = %q, want %q", want[i].Name, r, col, got[i].Rows[r][col], want[i].Rows[r][col])
				}
			}
		}
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want ErrNotExist", err)
	}
}
