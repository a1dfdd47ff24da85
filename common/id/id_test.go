package id_test

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Alpha-Sight/propellantBE/common/id"
)

var _ = Describe("id", func() {
	BeforeEach(func() {
		Expect(id.Init(3)).To(Succeed())
	})

	It("generates increasing unique ids", func() {
		seen := map[int64]bool{}
		prev := int64(0)
		for range 1000 {
			v := id.New()
			Expect(v).To(BeNumerically(">", prev))
			Expect(seen).NotTo(HaveKey(v))
			seen[v] = true
			prev = v
		}
	})

	It("formats ids as decimal strings", func() {
		v := id.New()
		Expect(id.String(v)).To(Equal(strconv.FormatInt(v, 10)))
	})
})
