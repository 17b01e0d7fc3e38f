// Copyright 2025 The Yourssu Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mail sends review notification emails. Delivery is best effort:
// a failed send is logged and reported, never surfaced as an error, so the
// deployment workflow does not depend on the mail relay.
package mail

import (
	"bytes"
	"context"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/spf13/pflag"

	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/log"
	"github.com/yourssu/yourssu-infrastructure-system-api/pkg/utils"
)

type Options struct {
	SMTPAddr     string `json:"smtpAddr,omitempty" description:"smtp relay host:port"`
	From         string `json:"from,omitempty" description:"sender address, also the auth identity"`
	AuthPassword string `json:"authPassword,omitempty" description:"smtp auth password"`
}

func NewDefaultOptions() *Options {
	return &Options{
		SMTPAddr:     "smtp.gmail.com:587",
		From:         "infra@yourssu.com",
		AuthPassword: "",
	}
}

func (o *Options) RegistFlags(prefix string, fs *pflag.FlagSet) {
	fs.StringVar(&o.SMTPAddr, utils.JoinFlagName(prefix, "smtpaddr"), o.SMTPAddr, "smtp relay host:port")
	fs.StringVar(&o.From, utils.JoinFlagName(prefix, "from"), o.From, "sender address, also the auth identity")
	fs.StringVar(&o.AuthPassword, utils.JoinFlagName(prefix, "authpassword"), o.AuthPassword, "smtp auth password")
}

type Notifier struct {
	options *Options
}

func NewNotifier(options *Options) *Notifier {
	return &Notifier{options: options}
}

// Send delivers one plain text mail to the receivers and reports whether
// delivery succeeded.
func (n *Notifier) Send(ctx context.Context, to []string, subject, body string) bool {
	if len(to) == 0 {
		return true
	}
	logger := log.FromContextOrDiscard(ctx)

	auth := sasl.NewPlainClient("", n.options.From, n.options.AuthPassword)
	buf := bytes.NewBufferString("From: " + n.options.From + "\r\n" +
		"To: " + strings.Join(to, ",") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")
	if err := smtp.SendMail(n.options.SMTPAddr, auth, n.options.From, to, buf); err != nil {
		logger.Error(err, "send mail", "to", to, "subject", subject)
		return false
	}
	logger.Info("sent mail", "to", to, "subject", subject)
	return true
}
