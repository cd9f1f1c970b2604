package prg_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/hashcloak/smol-mpc/core/prg"

	"github.com/hashcloak/smol-mpc/core/algebra"
)

var _ = Describe("PRG", func() {
	const Trials = 1000

	Context("when seeding", func() {
		It("should produce identical sequences for identical seeds", func() {
			a := New([]byte("identical seed"))
			b := New([]byte("identical seed"))

			for i := 0; i < Trials; i++ {
				Expect(a.NextElement()).To(Equal(b.NextElement()))
			}
		})

		It("should produce different first outputs for different seeds", func() {
			a := New([]byte("seed one"))
			b := New([]byte("seed two"))

			Expect(a.NextElement()).ToNot(Equal(b.NextElement()))
		})

		It("should zero-pad short seeds", func() {
			short := New([]byte{1, 2, 3})
			padded := New([]byte{1, 2, 3, 0, 0, 0, 0, 0})

			Expect(short.NextElement()).To(Equal(padded.NextElement()))
		})

		It("should crop seeds longer than the seed length", func() {
			seed := make([]byte, SeedLen)
			for i := range seed {
				seed[i] = byte(i)
			}

			exact := New(seed)
			cropped := New(append(append([]byte{}, seed...), 0xFF, 0xFF))

			Expect(exact.NextElement()).To(Equal(cropped.NextElement()))
		})

		It("should accept an empty seed", func() {
			a := New(nil)
			b := New([]byte{})

			Expect(a.NextElement()).To(Equal(b.NextElement()))
		})
	})

	Context("when generating field elements", func() {
		It("should produce canonical elements", func() {
			gen := New([]byte("range"))
			for i := 0; i < Trials; i++ {
				Expect(gen.NextElement().Uint64()).To(BeNumerically("<", algebra.P))
			}
		})

		It("should advance the counter by one block per element", func() {
			gen := New([]byte("counter"))
			for i := 0; i < Trials; i++ {
				Expect(gen.Counter()).To(Equal(uint64(i)))
				gen.NextElement()
			}
		})

		It("should not repeat elements over a short horizon", func() {
			gen := New([]byte("collisions"))
			seen := map[algebra.Element]struct{}{}
			for i := 0; i < Trials; i++ {
				seen[gen.NextElement()] = struct{}{}
			}
			// A collision within 1000 draws from a 61-bit space has
			// probability well below 2^-40.
			Expect(seen).To(HaveLen(Trials))
		})
	})

	Context("when generating bytes", func() {
		It("should return exactly n bytes", func() {
			gen := New([]byte("bytes"))
			for _, n := range []int{1, 8, 15, 16, 17, 32, 100} {
				Expect(gen.NextBytes(n)).To(HaveLen(n))
			}
		})

		It("should consume whole blocks", func() {
			gen := New([]byte("blocks"))

			gen.NextBytes(1)
			Expect(gen.Counter()).To(Equal(uint64(1)))

			gen.NextBytes(16)
			Expect(gen.Counter()).To(Equal(uint64(2)))

			gen.NextBytes(17)
			Expect(gen.Counter()).To(Equal(uint64(4)))
		})

		It("should return nothing for a non-positive count", func() {
			gen := New([]byte("empty"))
			Expect(gen.NextBytes(0)).To(BeEmpty())
			Expect(gen.Counter()).To(Equal(uint64(0)))
		})
	})
})
