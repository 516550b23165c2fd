package ecu

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestECUSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ECU Suite")
}
