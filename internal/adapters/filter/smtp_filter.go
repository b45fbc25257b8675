package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
)

// SMTPFilter is a content-filter frontend for mail pipelines. It analyzes
// the text body of each incoming message, prepends verdict headers, and
// relays the message to an upstream MTA. SCAM verdicts can optionally be
// rejected outright.
type SMTPFilter struct {
	service         *core.AnalyzerService
	text            *utils.TextProcessor
	logger          *zap.Logger
	listenAddr      string
	server          *smtp.Server
	blockScam       bool
	statusHeader    string
	scoreHeader     string
	labelHeader     string
	upstreamAddr    string
	upstreamPort    int
	relayEnabled    bool
	subjectPrefix   string
	modifySubject   bool
	maxMessageBytes int
}

// NewSMTPFilter creates a new SMTP content-filter frontend
func NewSMTPFilter(
	service *core.AnalyzerService,
	text *utils.TextProcessor,
	logger *zap.Logger,
	listenAddr string,
	blockScam bool,
	statusHeader string,
	scoreHeader string,
	labelHeader string,
	upstreamAddr string,
	upstreamPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
	maxMessageBytes int,
) *SMTPFilter {
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &SMTPFilter{
		service:         service,
		text:            text,
		logger:          logger,
		listenAddr:      listenAddr,
		blockScam:       blockScam,
		statusHeader:    statusHeader,
		scoreHeader:     scoreHeader,
		labelHeader:     labelHeader,
		upstreamAddr:    upstreamAddr,
		upstreamPort:    upstreamPort,
		relayEnabled:    relayEnabled,
		subjectPrefix:   subjectPrefix,
		modifySubject:   modifySubject,
		maxMessageBytes: maxMessageBytes,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Process analyzes a single raw message body
func (f *SMTPFilter) Process(ctx context.Context, raw string) (*core.Verdict, error) {
	return f.service.AnalyzeMessage(ctx, f.text.ProcessText(raw, f.maxMessageBytes))
}

// relayUpstream hands the tagged message to the upstream MTA
func (f *SMTPFilter) relayUpstream(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.upstreamAddr, f.upstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream MTA: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message body, tags the message with verdict headers,
// and relays it upstream
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	textContent, err := extractTextBody(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	verdict, err := s.filter.Process(ctx, textContent)
	if err != nil {
		// Analysis errors never bounce mail; tag the message as safe and
		// note the failure.
		s.filter.logger.Error("Failed to analyze message",
			zap.Error(err),
			zap.String("sender", s.sender))
		verdict = &core.Verdict{
			IsSafe: true,
			Label:  core.LabelSafe,
			Intent: core.IntentUnknown,
		}
	}

	if !verdict.IsSafe && verdict.Label == core.LabelScam && s.filter.blockScam {
		s.filter.logger.Info("Rejecting scam message",
			zap.String("from", s.sender),
			zap.Float64("risk_score", verdict.RiskScore),
			zap.String("intent", string(verdict.Intent)))
		return fmt.Errorf("550 Rejected as phishing (score: %.1f)", verdict.RiskScore)
	}

	tagged := s.tagMessage(msg, rawData, verdict)

	if s.filter.relayEnabled {
		if err := s.filter.relayUpstream(s.sender, s.recipients, tagged); err != nil {
			s.filter.logger.Error("Failed to relay message upstream",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Upstream relay disabled, message dropped after analysis")
	}

	s.filter.logger.Info("Processed message",
		zap.String("from", s.sender),
		zap.Bool("is_safe", verdict.IsSafe),
		zap.String("label", string(verdict.Label)),
		zap.Float64("risk_score", verdict.RiskScore))

	return nil
}

// tagMessage rebuilds the message with verdict headers prepended, optionally
// rewriting the subject, while preserving the original body bytes.
func (s *smtpSession) tagMessage(msg *mail.Message, rawData []byte, verdict *core.Verdict) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %t\r\n", s.filter.statusHeader, !verdict.IsSafe)
	fmt.Fprintf(&out, "%s: %.1f\r\n", s.filter.scoreHeader, verdict.RiskScore)
	fmt.Fprintf(&out, "%s: %s\r\n", s.filter.labelHeader, verdict.Label)
	if len(verdict.Signals) > 0 {
		types := make([]string, 0, len(verdict.Signals))
		for _, sig := range verdict.Signals {
			types = append(types, sig.Type)
		}
		fmt.Fprintf(&out, "%s-Signals: %s\r\n", s.filter.statusHeader, strings.Join(types, ", "))
	}

	rewriteSubject := !verdict.IsSafe && s.filter.modifySubject && s.filter.subjectPrefix != ""
	for key, values := range msg.Header {
		if rewriteSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	if rewriteSubject {
		subject := decodeEncodedHeader(msg.Header.Get("Subject"))
		if !strings.HasPrefix(subject, s.filter.subjectPrefix) {
			subject = s.filter.subjectPrefix + subject
		}
		fmt.Fprintf(&out, "Subject: %s\r\n", subject)
	}
	fmt.Fprintf(&out, "\r\n")

	// Reattach the original body bytes so MIME parts and attachments
	// survive untouched.
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		out.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		out.Write(rawData[idx+2:])
	} else if body, err := io.ReadAll(msg.Body); err == nil {
		out.Write(body)
	}

	return out.Bytes()
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}
