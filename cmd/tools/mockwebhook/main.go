package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"learnora.com/app/internal/modules/payments"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mockwebhook",
		Short: "Sign and send gateway callbacks to a local server",
	}
	rootCmd.AddCommand(sendCmd(), callbackCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type sendOpts struct {
	url       string
	secret    string
	eventID   string
	eventType string
	orderID   string
	paymentID string
	amount    int64
	currency  string
	reason    string
	dryRun    bool
}

func sendCmd() *cobra.Command {
	var o sendOpts
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a signed payment webhook",
		Example: `  mockwebhook send --order order_abc123 --type payment.captured
  mockwebhook send --order order_abc123 --type payment.failed --reason "card declined" --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.secret == "" {
				return fmt.Errorf("--secret not provided and RAZORPAY_WEBHOOK_SECRET not set")
			}
			if o.orderID == "" {
				return fmt.Errorf("--order is required")
			}
			body, err := buildEvent(o)
			if err != nil {
				return err
			}
			sig := payments.Sign(body, o.secret)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "X-Razorpay-Signature: %s\n", sig)
			fmt.Fprintf(out, "X-Razorpay-Event-Id: %s\n", o.eventID)
			fmt.Fprintf(out, "Body: %s\n", body)
			if o.dryRun {
				fmt.Fprintln(out, "\n[DRY RUN] Not sending request")
				return nil
			}

			resp, err := resty.New().SetTimeout(10*time.Second).R().
				SetHeader("Content-Type", "application/json").
				SetHeader("X-Razorpay-Signature", sig).
				SetHeader("X-Razorpay-Event-Id", o.eventID).
				SetBody(body).
				Post(o.url)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nStatus: %s\nResponse: %s\n", resp.Status(), resp.String())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.url, "url", "http://localhost:8080/api/payments/webhook", "webhook URL")
	f.StringVar(&o.secret, "secret", os.Getenv("RAZORPAY_WEBHOOK_SECRET"), "webhook secret")
	f.StringVar(&o.eventID, "event-id", "evt_"+randomHex(8), "event id header")
	f.StringVar(&o.eventType, "type", payments.EventPaymentCaptured, "payment.captured or payment.failed")
	f.StringVar(&o.orderID, "order", "", "gateway order id")
	f.StringVar(&o.paymentID, "payment", "pay_"+randomHex(7), "gateway payment id")
	f.Int64Var(&o.amount, "amount", 49900, "amount in minor units")
	f.StringVar(&o.currency, "currency", "INR", "currency")
	f.StringVar(&o.reason, "reason", "Payment declined", "error description for payment.failed")
	f.BoolVar(&o.dryRun, "dry-run", false, "print the signed request without sending it")
	return cmd
}

func buildEvent(o sendOpts) ([]byte, error) {
	entity := map[string]any{
		"id":       o.paymentID,
		"entity":   "payment",
		"order_id": o.orderID,
		"amount":   o.amount,
		"currency": o.currency,
		"status":   "captured",
	}
	if o.eventType == payments.EventPaymentFailed {
		entity["status"] = "failed"
		entity["error_description"] = o.reason
	}
	return json.Marshal(map[string]any{
		"entity":     "event",
		"event":      o.eventType,
		"created_at": time.Now().Unix(),
		"payload":    map[string]any{"payment": map[string]any{"entity": entity}},
	})
}

func callbackCmd() *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "callback <order_id> <payment_id>",
		Short: "Print the checkout callback signature for a verify request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret not provided and RAZORPAY_KEY_SECRET not set")
			}
			sig := payments.Sign(payments.CallbackMessage(args[0], args[1]), secret)
			body, _ := json.MarshalIndent(map[string]string{
				"razorpay_order_id":   args[0],
				"razorpay_payment_id": args[1],
				"razorpay_signature":  sig,
			}, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("RAZORPAY_KEY_SECRET"), "API key secret")
	return cmd
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
