package auth

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Prompter asks the operator for login credentials.
type Prompter interface {
	Email() (string, error)
	Password() (string, error)
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter creates a terminal prompter. opts are passed to
// every question, e.g. survey.WithStdio in tests.
func NewSurveyPrompter(opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{opts: opts}
}

// Email asks for the login email.
func (p *SurveyPrompter) Email() (string, error) {
	var email string
	opts := append([]survey.AskOpt{survey.WithValidator(survey.Required)}, p.opts...)
	if err := survey.AskOne(&survey.Input{Message: "login:"}, &email, opts...); err != nil {
		return "", promptError(err)
	}
	return email, nil
}

// Password asks for the password without echo.
func (p *SurveyPrompter) Password() (string, error) {
	var password string
	opts := append([]survey.AskOpt{survey.WithValidator(survey.Required)}, p.opts...)
	if err := survey.AskOne(&survey.Password{Message: "password:"}, &password, opts...); err != nil {
		return "", promptError(err)
	}
	return password, nil
}

func promptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrLoginCancelled
	}
	return err
}
