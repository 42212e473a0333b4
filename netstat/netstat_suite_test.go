package netstat_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNetstat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Netstat Suite")
}
