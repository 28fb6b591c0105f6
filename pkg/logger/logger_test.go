package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerFormats(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Format: FormatJSON, Writer: &buf}), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When an info line is written with fields", func() {
			Get().Info(context.Background(), "rankings built",
				String("category", "Trio - Youth"),
				Int("entries", 3),
				Bool("extended", false),
				Error(errors.New("boom")),
			)

			Convey("Then the line is valid JSON carrying the fields and the caller", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "rankings built")
				So(line["category"], ShouldEqual, "Trio - Youth")
				So(line["entries"], ShouldEqual, float64(3))
				So(line["extended"], ShouldEqual, false)
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Error(context.Background(), "shown")

			Convey("Then only the error line is written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
			})
		})

		Convey("When a named logger writes", func() {
			Named("ranking").Warn(context.Background(), "named")

			Convey("Then the component is attached", func() {
				So(buf.String(), ShouldContainSubstring, `"component":"ranking"`)
			})
		})
	})

	Convey("Given an unknown format", t, func() {
		err := InitWithOptions(Options{Format: "xml"})

		Convey("Then initialization fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log format")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)

		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}

		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "unknown log level"), ShouldBeTrue)
	})
}
