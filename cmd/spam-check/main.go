package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/oakline/formgate/internal/content"
	"github.com/oakline/formgate/internal/logging"
)

// spam-check runs the heuristic content checks over sample text so the
// thresholds can be tuned against labeled real and bot submissions before
// they are changed in production.
var (
	checkName    = flag.String("name", "", "Name value to validate")
	checkCity    = flag.String("city", "", "City value to validate")
	minWords     = flag.Int("min-words", 3, "Minimum word count for the message check")
	inputFile    = flag.String("file", "", "Read the message from a file (use stdin if not specified)")
	noMessage    = flag.Bool("no-message", false, "Skip the message check entirely")
	gibberishRaw = flag.Bool("gibberish-only", false, "Only run the gibberish primitive on each input line")

	vowelRatioMin = flag.Float64("vowel-ratio-min", 0.15, "Lower vowel ratio bound")
	vowelRatioMax = flag.Float64("vowel-ratio-max", 0.65, "Upper vowel ratio bound")
	consonantRun  = flag.Int("consonant-run", 5, "Consecutive consonant run considered gibberish")
	repeatCount   = flag.Int("repeat-count", 3, "Immediate fragment repetitions considered gibberish")
	caseRatio     = flag.Float64("case-ratio", 0.6, "Case transition ratio considered gibberish")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog       = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	thresholds := content.DefaultThresholds()
	thresholds.VowelRatioMin = *vowelRatioMin
	thresholds.VowelRatioMax = *vowelRatioMax
	thresholds.MaxConsonantRun = *consonantRun
	thresholds.RepeatCount = *repeatCount
	thresholds.CaseTransitionRatio = *caseRatio

	if *gibberishRaw {
		runGibberishOnly(logger, thresholds)
		return
	}

	validator := content.NewValidator(thresholds)
	flagged := false

	if *checkName != "" {
		if reason := validator.ValidateName(*checkName); reason != "" {
			fmt.Printf("name: FAIL (%s)\n", reason)
			flagged = true
		} else {
			fmt.Println("name: ok")
		}
	}

	if *checkCity != "" {
		if reason := validator.ValidateCity(*checkCity); reason != "" {
			fmt.Printf("city: FAIL (%s)\n", reason)
			flagged = true
		} else {
			fmt.Println("city: ok")
		}
	}

	if !*noMessage {
		message, err := readMessage(logger)
		if err != nil {
			logger.Fatal("Failed to read message", zap.Error(err))
		}
		if reason := validator.ValidateMessage(message, *minWords); reason != "" {
			fmt.Printf("message: FAIL (%s)\n", reason)
			flagged = true
		} else {
			fmt.Println("message: ok")
		}
	}

	if flagged {
		os.Exit(1)
	}
}

// runGibberishOnly classifies each input line, one verdict per line, so a
// labeled corpus can be scored with standard shell tooling.
func runGibberishOnly(logger *zap.Logger, thresholds content.Thresholds) {
	detector := content.NewDetector(thresholds)

	reader, err := openInput()
	if err != nil {
		logger.Fatal("Failed to open input", zap.Error(err))
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Printf("%t\t%s\n", detector.IsGibberish(line), line)
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}
}

func readMessage(logger *zap.Logger) (string, error) {
	reader, err := openInput()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	logger.Debug("Read message", zap.Int("bytes", len(data)))
	return string(data), nil
}

func openInput() (io.Reader, error) {
	if *inputFile == "" {
		return os.Stdin, nil
	}
	file, err := os.Open(*inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return file, nil
}
