package algebra_test

import (
	"math/big"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	. "github.com/hashcloak/smol-mpc/core/algebra"
)

var _ = Describe("Finite field GF(2^61 - 1)", func() {
	const Trials = 1000

	random := rand.New(rand.NewSource(0x5eed))

	randomElement := func() Element {
		return NewElement(random.Uint64())
	}

	bigP := new(big.Int).SetUint64(P)

	Context("when constructing elements", func() {
		DescribeTable("the result is the canonical representative",
			func(x, expected uint64) {
				Expect(NewElement(x).Uint64()).To(Equal(expected))
			},
			Entry("zero", uint64(0), uint64(0)),
			Entry("one", uint64(1), uint64(1)),
			Entry("p-1", P-1, P-1),
			Entry("p", P, uint64(0)),
			Entry("p+1", P+1, uint64(1)),
			Entry("2p", 2*P, uint64(0)),
			Entry("max uint64", ^uint64(0), ^uint64(0)%P),
		)

		It("should always produce values in [0, p)", func() {
			for i := 0; i < Trials; i++ {
				Expect(NewElement(random.Uint64()).Uint64()).To(BeNumerically("<", P))
			}
		})
	})

	Context("when reducing wide values", func() {
		It("should agree with big integer reduction", func() {
			for i := 0; i < Trials; i++ {
				hi, lo := random.Uint64(), random.Uint64()

				wide := new(big.Int).SetUint64(hi)
				wide.Lsh(wide, 64)
				wide.Add(wide, new(big.Int).SetUint64(lo))
				wide.Mod(wide, bigP)

				Expect(ReduceWide(hi, lo)).To(Equal(wide.Uint64()))
			}
		})
	})

	Context("when adding and subtracting", func() {
		It("should stay in [0, p)", func() {
			for i := 0; i < Trials; i++ {
				a, b := randomElement(), randomElement()
				Expect(a.Add(b).Uint64()).To(BeNumerically("<", P))
				Expect(a.Sub(b).Uint64()).To(BeNumerically("<", P))
			}
		})

		It("should satisfy a + (-a) = 0", func() {
			for i := 0; i < Trials; i++ {
				a := randomElement()
				Expect(a.Add(a.Neg())).To(Equal(Element(0)))
			}
		})

		It("should invert addition with subtraction", func() {
			for i := 0; i < Trials; i++ {
				a, b := randomElement(), randomElement()
				Expect(a.Add(b).Sub(b)).To(Equal(a))
			}
		})

		It("should handle subtraction below zero by wrapping", func() {
			Expect(Element(0).Sub(Element(1)).Uint64()).To(Equal(P - 1))
		})
	})

	Context("when multiplying", func() {
		It("should agree with big integer multiplication", func() {
			for i := 0; i < Trials; i++ {
				a, b := randomElement(), randomElement()

				expected := new(big.Int).SetUint64(a.Uint64())
				expected.Mul(expected, new(big.Int).SetUint64(b.Uint64()))
				expected.Mod(expected, bigP)

				Expect(a.Mul(b).Uint64()).To(Equal(expected.Uint64()))
			}
		})

		It("should satisfy a * a^-1 = 1 for a != 0", func() {
			for i := 0; i < Trials; i++ {
				a := randomElement()
				if a.IsZero() {
					continue
				}

				inv, err := a.Inv()
				Expect(err).ToNot(HaveOccurred())
				Expect(a.Mul(inv)).To(Equal(Element(1)))
			}
		})

		It("should refuse to invert the additive identity", func() {
			_, err := Element(0).Inv()
			Expect(err).To(Equal(ErrDivisionByZero))
		})
	})

	Context("when exponentiating", func() {
		It("should satisfy Fermat's little theorem", func() {
			for i := 0; i < 100; i++ {
				a := randomElement()
				if a.IsZero() {
					continue
				}
				Expect(a.Exp(P - 1)).To(Equal(Element(1)))
			}
		})
	})
})
