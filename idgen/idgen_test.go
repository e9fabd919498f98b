package idgen

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/xid"
)

var _ = Describe("Sequential", func() {
	It("should count from one", func() {
		g := &Sequential{}

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
		Expect(g.Generate()).To(Equal("3"))
	})

	It("should not repeat IDs across goroutines", func() {
		g := &Sequential{}
		ids := make([][]string, 4)

		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					ids[i] = append(ids[i], g.Generate())
				}
			}()
		}
		wg.Wait()

		seen := map[string]bool{}
		for _, list := range ids {
			for _, id := range list {
				Expect(seen).NotTo(HaveKey(id))
				seen[id] = true
			}
		}
		Expect(seen).To(HaveLen(400))
	})
})

var _ = Describe("Unique", func() {
	It("should generate valid xids", func() {
		id := Unique{}.Generate()

		_, err := xid.FromString(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(Unique{}.Generate()).NotTo(Equal(id))
	})
})

var _ = Describe("DefaultGenerator", func() {
	BeforeEach(resetDefault)
	AfterEach(resetDefault)

	It("should generate unique IDs unless configured", func() {
		Expect(DefaultGenerator()).To(Equal(Unique{}))
	})

	It("should use the configured generator", func() {
		UseSequential()

		Expect(DefaultGenerator().Generate()).To(Equal("1"))
	})

	It("should use unique IDs when configured", func() {
		UseUnique()

		_, err := xid.FromString(DefaultGenerator().Generate())
		Expect(err).NotTo(HaveOccurred())
		Expect(UseSequential).To(Panic())
	})

	It("should panic when reconfigured after use", func() {
		DefaultGenerator()

		Expect(UseSequential).To(Panic())
	})

	It("should prefer an inherited run ID", func() {
		Expect(RunID("shared")).To(Equal("shared"))
		Expect(RunID("")).NotTo(BeEmpty())
	})
})
