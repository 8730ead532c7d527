package services

import (
	"os"
	"testing"

	"github.com/qetahub/qeta/pkg/internal/tester"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()
	tester.RemoveDBFile()

	os.Exit(code)
}
