package completion_helper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/urfave/cli/v3"
)

func TestPrintFlags(t *testing.T) {
	// Arrange
	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}},
			&cli.BoolFlag{Name: "quiet"},
		},
	}
	var buf bytes.Buffer

	// Act
	printFlags(&buf, cmd)

	// Assert
	assert.Equal(t, "--model\n-m\n--quiet\n", buf.String())
}

func TestPrintIDs(t *testing.T) {
	// Arrange
	reg := catalog.NewRegistry()
	var buf bytes.Buffer

	// Act
	printIDs(&buf, reg)

	// Assert
	out := buf.String()
	assert.Contains(t, out, catalog.DefaultModelID+"\n")
	assert.Contains(t, out, catalog.DefaultTechniqueID+"\n")
	assert.Contains(t, out, catalog.DefaultFormatID+"\n")
}
