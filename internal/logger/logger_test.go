package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iishyfishyy/vibematch/internal/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes timestamped, leveled text lines", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("catalog built", "items", 8)

			line := buf.String()
			Expect(line).To(MatchRegexp(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} `))
			Expect(line).To(ContainSubstring("INFO"))
			Expect(line).To(ContainSubstring("catalog built"))
			Expect(line).To(ContainSubstring("items=8"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(false))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Error("query failed", "query", "cozy")

			var parsed map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
			Expect(parsed["msg"]).To(Equal("query failed"))
			Expect(parsed["query"]).To(Equal("cozy"))
			Expect(parsed["level"]).To(Equal("error"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.New(logger.WithWriters(&buf1, &buf2))
			l.Warn("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})

		It("honours a custom time format and prefix", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithTimeFormat("15:04"), logger.WithPrefix("search"))
			l.Info("hello")

			Expect(regexp.MustCompile(`^\d{2}:\d{2} `).MatchString(buf.String())).To(BeTrue())
			Expect(buf.String()).To(ContainSubstring("search"))
		})
	})

	Describe("OpenFile", func() {
		It("appends across opens", func() {
			path := filepath.Join(GinkgoT().TempDir(), logger.LogFileName)

			for _, msg := range []string{"first", "second"} {
				f, err := logger.OpenFile(path)
				Expect(err).NotTo(HaveOccurred())
				logger.New(logger.WithWriter(f)).Info(msg)
				Expect(f.Close()).To(Succeed())
			}

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[0]).To(ContainSubstring("first"))
			Expect(lines[1]).To(ContainSubstring("second"))
		})
	})

	Describe("Nop", func() {
		It("does not panic on any method", func() {
			l := logger.Nop()
			Expect(func() {
				l.Debug("msg")
				l.Info("msg")
				l.Warn("msg")
				l.Error("msg")
				l.With("key", "value").Info("msg")
			}).NotTo(Panic())
		})
	})
})
