package history_test

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/search"
)

var _ = Describe("History", func() {
	var (
		path string
		hist *history.History
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "nested", history.HistoryFileName)
		hist = history.New(path)
	})

	result := func(query string, matches ...search.Match) *search.QueryResult {
		return &search.QueryResult{
			Query:   query,
			Matches: matches,
			Elapsed: 1234 * time.Millisecond,
		}
	}

	It("writes the header once and appends rows", func() {
		Expect(hist.Append(result("relaxed cozy vibe",
			search.Match{Name: "Cozy Sweater", Description: "Warm, soft knit perfect for a relaxed evening.", Score: 0.5},
			search.Match{Name: "Boho Dress", Description: "Flowy, earthy tones for festival vibes.", Score: 0.25},
		))).To(Succeed())
		Expect(hist.Append(result("energetic urban chic",
			search.Match{Name: "Sporty Sneakers", Description: "Lightweight sneakers for an active, energetic look.", Score: 0.75},
		))).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(Equal("name,description,score,query,time_taken_seconds"))
		Expect(lines[1]).To(Equal(`Cozy Sweater,"Warm, soft knit perfect for a relaxed evening.",0.5,relaxed cozy vibe,1.23`))
		Expect(strings.Count(string(data), "time_taken_seconds")).To(Equal(1))
	})

	It("never rewrites existing rows", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		existing := "name,description,score,query,time_taken_seconds\nOld,Old row,0.1,old query,0.50\n"
		Expect(os.WriteFile(path, []byte(existing), 0644)).To(Succeed())

		Expect(hist.Append(result("new", search.Match{Name: "New", Description: "New row", Score: 0.9}))).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix(existing))
		Expect(string(data)).To(HaveSuffix("New,New row,0.9,new,1.23\n"))
	})

	It("skips results without matches", func() {
		Expect(hist.Append(result("nothing"))).To(Succeed())
		Expect(hist.Append(nil)).To(Succeed())

		_, err := os.Stat(path)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	Describe("Load", func() {
		It("reads rows back in order", func() {
			Expect(hist.Append(result("q1", search.Match{Name: "A", Description: "a", Score: 0.875}))).To(Succeed())
			Expect(hist.Append(result("q2", search.Match{Name: "B", Description: "b, with comma", Score: -0.5}))).To(Succeed())

			rows, err := history.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal([]history.Row{
				{Name: "A", Description: "a", Score: 0.875, Query: "q1", TimeTakenSeconds: 1.23},
				{Name: "B", Description: "b, with comma", Score: -0.5, Query: "q2", TimeTakenSeconds: 1.23},
			}))
		})

		It("treats a missing file as empty", func() {
			rows, err := history.Load(filepath.Join(GinkgoT().TempDir(), "missing.csv"))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})

		It("rejects malformed rows", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
			Expect(os.WriteFile(path, []byte("name,description,score,query,time_taken_seconds\nA,a,high,q,1\n"), 0644)).To(Succeed())

			_, err := history.Load(path)
			Expect(err).To(MatchError(ContainSubstring("invalid score")))
		})
	})
})
