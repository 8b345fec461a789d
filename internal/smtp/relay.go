package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
)

// ErrAuthFailed 中继拒绝了发件人凭证
var ErrAuthFailed = errors.New("smtp authentication failed")

// errAuthUnsupported 中继没有提供 AUTH PLAIN，属于中继配置问题而不是凭证错误
var errAuthUnsupported = errors.New("relay does not offer AUTH PLAIN")

// DialFunc 建立到中继的 SMTP 客户端连接
type DialFunc func(ctx context.Context, addr string) (*gosmtp.Client, error)

// Credentials 发件人登录凭证
type Credentials struct {
	Username string
	Password string
}

// Relay 通过外部 SMTP 中继发送邮件。
//
// 每次发送新建一个会话，没有重试和超时；可被多个请求并发使用。
type Relay struct {
	addr      string
	localName string
	tlsConfig *tls.Config
	dial      DialFunc
	log       *zap.Logger
}

// Option 配置 Relay
type Option func(*Relay)

// WithDialer 替换默认的隐式 TLS 拨号
func WithDialer(dial DialFunc) Option {
	return func(r *Relay) {
		r.dial = dial
	}
}

// WithTLSConfig 替换隐式 TLS 拨号使用的 TLS 配置，未设置 ServerName 时使用中继主机名
func WithTLSConfig(cfg *tls.Config) Option {
	return func(r *Relay) {
		if cfg != nil {
			r.tlsConfig = cfg.Clone()
		}
	}
}

// NewRelay 创建指向 cfg 中继地址的客户端，默认使用隐式 TLS（端口 465）
func NewRelay(cfg config.SMTPConfig, log *zap.Logger, opts ...Option) *Relay {
	r := &Relay{
		addr:      cfg.Addr(),
		localName: "localhost",
		tlsConfig: &tls.Config{},
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tlsConfig.ServerName == "" {
		r.tlsConfig.ServerName = cfg.Host
	}
	if r.dial == nil {
		r.dial = implicitTLSDialer(r.tlsConfig)
	}
	return r
}

// Addr 返回中继地址
func (r *Relay) Addr() string {
	return r.addr
}

// implicitTLSDialer 在 TCP 连接建立后立即进行 TLS 握手
func implicitTLSDialer(cfg *tls.Config) DialFunc {
	return func(ctx context.Context, addr string) (*gosmtp.Client, error) {
		dialer := &tls.Dialer{Config: cfg}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return gosmtp.NewClient(conn), nil
	}
}

// Send 登录中继并投递一封邮件
//
// 中继拒绝 AUTH PLAIN 时返回包装 ErrAuthFailed 的错误；
// 中继没有提供 AUTH PLAIN 以及其余错误都原样包装返回。
func (r *Relay) Send(ctx context.Context, creds Credentials, from string, to []string, msg []byte) error {
	c, err := r.dial(ctx, r.addr)
	if err != nil {
		return fmt.Errorf("dial relay %s: %w", r.addr, err)
	}
	defer c.Close()

	if err := c.Hello(r.localName); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}

	if ok, mechs := c.Extension("AUTH"); !ok || !offersPlain(mechs) {
		return fmt.Errorf("%w (advertised: %q)", errAuthUnsupported, mechs)
	}

	if err := c.Auth(sasl.NewPlainClient("", creds.Username, creds.Password)); err != nil {
		var smtpErr *gosmtp.SMTPError
		if errors.As(err, &smtpErr) {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := c.SendMail(from, to, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}

	r.log.Debug("message handed to relay",
		zap.String("relay", r.addr),
		zap.Strings("recipients", to),
		zap.Int("bytes", len(msg)),
	)

	return nil
}

// offersPlain 检查 EHLO 中 AUTH 扩展的参数是否包含 PLAIN
func offersPlain(mechs string) bool {
	for _, mech := range strings.Fields(mechs) {
		if strings.EqualFold(mech, sasl.Plain) {
			return true
		}
	}
	return false
}
