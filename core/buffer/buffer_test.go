package buffer_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/hashcloak/smol-mpc/core/buffer"
)

type msg int

func (msg) IsMessage() {
}

var _ = Describe("Buffer", func() {

	buildFullBuffer := func(cap int) Buffer {
		buf := New(cap)
		for i := 0; i < cap; i++ {
			buf.Push(msg(i))
		}
		return buf
	}

	table := []struct {
		cap int
	}{
		{1}, {2}, {4}, {16}, {64}, {256},
	}

	for _, entry := range table {
		entry := entry

		Context("when the buffer is empty", func() {
			It("should be empty and not full", func() {
				buf := New(entry.cap)
				Expect(buf.IsEmpty()).To(BeTrue())
				Expect(buf.IsFull()).To(BeFalse())
			})

			It("should fail to pop", func() {
				buf := New(entry.cap)
				Expect(buf.Pop()).To(BeFalse())
			})

			It("should have no top", func() {
				buf := New(entry.cap)
				_, ok := buf.Top()
				Expect(ok).To(BeFalse())
			})
		})

		Context("when the buffer is full", func() {
			It("should be full and not empty", func() {
				buf := buildFullBuffer(entry.cap)
				Expect(buf.IsFull()).To(BeTrue())
				Expect(buf.IsEmpty()).To(BeFalse())
			})

			It("should fail to push", func() {
				buf := buildFullBuffer(entry.cap)
				Expect(buf.Push(msg(0))).To(BeFalse())
			})

			It("should pop every message in order", func() {
				buf := buildFullBuffer(entry.cap)
				for i := 0; i < entry.cap; i++ {
					top, ok := buf.Top()
					Expect(ok).To(BeTrue())
					Expect(top).To(Equal(msg(i)))
					Expect(buf.Pop()).To(BeTrue())
				}
				Expect(buf.IsEmpty()).To(BeTrue())
			})
		})

		Context("when interleaving pushes and pops", func() {
			It("should preserve first-in-first-out order across wraparound", func() {
				buf := New(entry.cap)
				next := 0
				expected := 0

				for round := 0; round < 3; round++ {
					for buf.Push(msg(next)) {
						next++
					}
					for i := 0; i < entry.cap/2+1 && !buf.IsEmpty(); i++ {
						top, ok := buf.Top()
						Expect(ok).To(BeTrue())
						Expect(top).To(Equal(msg(expected)))
						Expect(buf.Pop()).To(BeTrue())
						expected++
					}
				}
			})
		})
	}

	Context("when constructing a buffer", func() {
		It("should panic on a non-positive capacity", func() {
			Expect(func() { New(0) }).To(Panic())
			Expect(func() { New(-1) }).To(Panic())
		})
	})
})
