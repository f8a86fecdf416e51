package vectorstore_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iishyfishyy/vibematch/internal/vectorstore"
)

var _ = Describe("Key", func() {
	It("is stable and content addressed", func() {
		Expect(vectorstore.Key("Warm, soft knit")).To(Equal(vectorstore.Key("Warm, soft knit")))
		Expect(vectorstore.Key("Warm, soft knit")).NotTo(Equal(vectorstore.Key("Bold patterns")))
		Expect(vectorstore.Key("x")).To(HaveLen(64))
	})
})

var _ = Describe("MemoryStore", func() {
	var (
		ctx   context.Context
		store *vectorstore.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = vectorstore.NewMemoryStore()
	})

	It("round-trips vectors", func() {
		Expect(store.Put(ctx, "a", []float32{1, 2})).To(Succeed())

		vec, ok, err := store.Get(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(vec).To(Equal([]float32{1, 2}))
		Expect(store.Count()).To(Equal(1))
	})

	It("reports misses", func() {
		_, ok, err := store.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("copies vectors on the way in and out", func() {
		in := []float32{1, 2}
		Expect(store.Put(ctx, "a", in)).To(Succeed())
		in[0] = 99

		out, _, _ := store.Get(ctx, "a")
		Expect(out[0]).To(Equal(float32(1)))
		out[1] = 99

		again, _, _ := store.Get(ctx, "a")
		Expect(again).To(Equal([]float32{1, 2}))
	})

	It("rejects empty vectors", func() {
		Expect(store.Put(ctx, "a", nil)).NotTo(Succeed())
	})

	It("clears", func() {
		Expect(store.Put(ctx, "a", []float32{1})).To(Succeed())
		Expect(store.Clear(ctx)).To(Succeed())
		Expect(store.Count()).To(BeZero())
	})
})

var _ = Describe("SQLiteStore", func() {
	var (
		ctx    context.Context
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dbPath = filepath.Join(GinkgoT().TempDir(), "cache", "embeddings.db")
	})

	open := func(model string) *vectorstore.SQLiteStore {
		store, err := vectorstore.OpenSQLiteStore(dbPath, model)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)
		return store
	}

	It("persists vectors across opens", func() {
		store := open("openrouter/text-embedding-3-small")
		Expect(store.Put(ctx, "a", []float32{0.5, -0.25, 1})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		reopened := open("openrouter/text-embedding-3-small")
		Expect(reopened.ResetReason()).To(BeEmpty())
		Expect(reopened.Count()).To(Equal(1))

		vec, ok, err := reopened.Get(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(vec).To(Equal([]float32{0.5, -0.25, 1}))
	})

	It("drops vectors written by another model", func() {
		store := open("ollama/nomic-embed-text")
		Expect(store.Put(ctx, "a", []float32{1, 0})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		reopened := open("openai/text-embedding-3-small")
		Expect(reopened.ResetReason()).To(ContainSubstring("model changed"))
		Expect(reopened.Count()).To(BeZero())

		// the new model may use another size
		Expect(reopened.Put(ctx, "a", []float32{1, 0, 0})).To(Succeed())
	})

	It("enforces a single dimensionality", func() {
		store := open("m")
		Expect(store.Put(ctx, "a", []float32{1, 0})).To(Succeed())
		Expect(store.Put(ctx, "b", []float32{1, 0, 0})).NotTo(Succeed())

		Expect(store.Clear(ctx)).To(Succeed())
		Expect(store.Put(ctx, "b", []float32{1, 0, 0})).To(Succeed())
	})

	It("tracks the index time", func() {
		store := open("m")
		Expect(store.IndexTime().IsZero()).To(BeTrue())
		Expect(store.UpdateIndexTime()).To(Succeed())
		Expect(store.IndexTime().IsZero()).To(BeFalse())
	})

	It("reports misses", func() {
		store := open("m")
		_, ok, err := store.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
