package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// LoggerService handles operational logging to a daily file under the
// data directory. Audit-trail failures and other best-effort problems
// are reported here instead of failing the business operation.
type LoggerService struct {
	logDir     string
	logFile    *os.File
	logger     *log.Logger
	currentDay string
}

// NewLoggerService creates a logger writing under dataPath/logs. If the
// directory or file cannot be created it degrades to stdout only.
func NewLoggerService(dataPath string) *LoggerService {
	s := &LoggerService{logDir: filepath.Join(dataPath, "logs")}
	s.initializeLogger()
	return s
}

func (s *LoggerService) initializeLogger() {
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
		s.logger = log.New(os.Stdout, "", log.LstdFlags)
		return
	}

	if err := s.rotateLogFile(); err != nil {
		log.Printf("Warning: Could not create log file: %v. Logging to stdout only.", err)
		s.logger = log.New(os.Stdout, "", log.LstdFlags)
		return
	}

	s.logger = log.New(io.MultiWriter(os.Stdout, s.logFile), "", log.LstdFlags)
}

// rotateLogFile creates a new log file when the day changes
func (s *LoggerService) rotateLogFile() error {
	today := time.Now().Format("2006-01-02")
	if s.currentDay == today && s.logFile != nil {
		return nil
	}

	if s.logFile != nil {
		s.logFile.Close()
	}

	logFilePath := filepath.Join(s.logDir, fmt.Sprintf("%s.log", today))
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.logFile = file
	s.currentDay = today
	s.logger = log.New(io.MultiWriter(os.Stdout, s.logFile), "", log.LstdFlags)
	return nil
}

func (s *LoggerService) checkAndRotate() {
	if s.logFile != nil {
		if err := s.rotateLogFile(); err != nil {
			log.Printf("Warning: log rotation failed: %v", err)
		}
	}
}

// LogInfo logs an informational message
func (s *LoggerService) LogInfo(message string, details ...string) {
	s.checkAndRotate()
	detailStr := ""
	if len(details) > 0 {
		detailStr = " | " + details[0]
	}
	s.logger.Printf("[INFO] %s%s", message, detailStr)
}

// LogWarning logs a warning message
func (s *LoggerService) LogWarning(message string, details ...string) {
	s.checkAndRotate()
	detailStr := ""
	if len(details) > 0 {
		detailStr = " | " + details[0]
	}
	s.logger.Printf("[WARNING] %s%s", message, detailStr)
}

// LogError logs an error message
func (s *LoggerService) LogError(message string, err error, details ...string) {
	s.checkAndRotate()
	detailStr := ""
	if len(details) > 0 {
		detailStr = " | " + details[0]
	}
	errorStr := ""
	if err != nil {
		errorStr = fmt.Sprintf(" | Error: %v", err)
	}
	s.logger.Printf("[ERROR] %s%s%s", message, errorStr, detailStr)
}

// Close closes the underlying log file
func (s *LoggerService) Close() error {
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}
