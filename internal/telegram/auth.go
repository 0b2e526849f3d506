package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// PromptAuth implements gotd's auth.UserAuthenticator by asking on a
// terminal. A preset phone number skips the first prompt.
type PromptAuth struct {
	PhoneNumber string

	in  *bufio.Reader
	out io.Writer
}

func NewPromptAuth(phone string, in io.Reader, out io.Writer) *PromptAuth {
	return &PromptAuth{
		PhoneNumber: phone,
		in:          bufio.NewReader(in),
		out:         out,
	}
}

func (a *PromptAuth) Phone(ctx context.Context) (string, error) {
	if a.PhoneNumber != "" {
		return a.PhoneNumber, nil
	}
	return a.ask(ctx, "Phone number: ")
}

func (a *PromptAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	return a.ask(ctx, "Login code: ")
}

func (a *PromptAuth) Password(ctx context.Context) (string, error) {
	return a.ask(ctx, "2FA password: ")
}

func (a *PromptAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *PromptAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up not supported")
}

func (a *PromptAuth) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
