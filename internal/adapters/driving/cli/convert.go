package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/officepdf/internal/converters/pdf"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/logger"
)

var (
	convertOutput      string
	convertPassword    string
	convertAskPassword bool
	convertQuality     string
	convertMIME        string
	convertForce       bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a document to PDF",
	Long: `Convert a Word, Excel or PowerPoint document to PDF.

The PDF is written next to the source file unless --output or the
conversion.output_dir setting says otherwise. An existing file is only
replaced when --force is given.

Examples:
  officepdf convert report.docx
  officepdf convert budget.xlsx -o out/ --ask-password
  officepdf convert slides.pptx -q high -o slides-final.pdf --force`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOutput, "output", "o", "", "output file or directory")
	f.StringVarP(&convertPassword, "password", "p", "", "protect the PDF with this password")
	f.BoolVar(&convertAskPassword, "ask-password", false, "prompt for the PDF password")
	f.StringVarP(&convertQuality, "quality", "q", "", "render quality: low, medium or high")
	f.StringVar(&convertMIME, "mime", "", "declared media type of the input")
	f.BoolVar(&convertForce, "force", false, "overwrite an existing output file")
	convertCmd.MarkFlagsMutuallyExclusive("password", "ask-password")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if conversionService == nil {
		return errNotConfigured("conversion")
	}

	if convertQuality != "" && !domain.Quality(convertQuality).IsValid() {
		return fmt.Errorf("%w: quality %q (expected low, medium or high)", domain.ErrInvalidInput, convertQuality)
	}
	settings := effectiveSettings()

	source, err := domain.SourceFileFromPath(args[0], convertMIME)
	if err != nil {
		return err
	}

	outPath := domain.ResolveOutputPath(args[0], convertOutput, settings.Conversion.OutputDir)
	if err := domain.CheckOverwrite(outPath, convertForce); err != nil {
		if errors.Is(err, domain.ErrOutputExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	password := convertPassword
	if convertAskPassword {
		password, err = promptPassword(cmd)
		if err != nil {
			return err
		}
	}

	opts := domain.ConversionOptions{
		Password: password,
		Quality:  settings.Conversion.Quality,
	}

	cmd.Printf("Converting %s (%s)\n", source.Name, humanize.Bytes(uint64(max(source.Size, 0))))

	display := newProgressDisplay(cmd.ErrOrStderr(), source.Name, isTerminal(cmd.ErrOrStderr()))
	outcome, err := conversionService.Convert(cmd.Context(), source, opts, display.Update)
	display.Done(err == nil)
	if err != nil {
		return conversionError(err)
	}

	if err := writeOutput(outPath, outcome.Success.PDF); err != nil {
		return err
	}

	details := []string{humanize.Bytes(uint64(len(outcome.Success.PDF)))}
	if !opts.Encrypted() {
		if info, err := pdf.Inspect(outcome.Success.PDF, ""); err == nil {
			details = append(details, pageCount(info.Pages))
		} else {
			logger.Debug("Could not inspect output: %v", err)
		}
	} else {
		details = append(details, "password protected")
	}
	cmd.Printf("Saved %s (%s) in %s\n", outPath, strings.Join(details, ", "), outcome.Duration().Round(time.Millisecond))
	return nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// conversionError turns a failure outcome into a user-facing error.
func conversionError(err error) error {
	var failure *domain.Failure
	if !errors.As(err, &failure) {
		return err
	}
	switch failure.Kind {
	case domain.FailureValidation:
		return fmt.Errorf("%s (supported: %s)", failure.Reason, supportedExtensions())
	case domain.FailureCancelled:
		return errors.New("conversion cancelled")
	default:
		return errors.New(failure.Reason)
	}
}

func supportedExtensions() string {
	formats := domain.AllFormats()
	if conversionService != nil {
		formats = conversionService.Formats()
	}
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Extension()
	}
	return strings.Join(exts, ", ")
}

func pageCount(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

// promptPassword reads the PDF password without echo when stdin is a
// terminal, asking twice to confirm it.
func promptPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		first, err := readHidden(cmd, f, "PDF password: ")
		if err != nil {
			return "", err
		}
		second, err := readHidden(cmd, f, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if first != second {
			return "", errors.New("passwords do not match")
		}
		if first == "" {
			return "", fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
		}
		return first, nil
	}

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
	}
	return password, nil
}

func readHidden(cmd *cobra.Command, f *os.File, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
