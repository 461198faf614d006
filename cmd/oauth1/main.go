package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-connect/internal/jwt"
	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
)

func main() {
	out := envOr("OAUTH1_OUT", "text")

	root := &cobra.Command{
		Use:           "oauth1",
		Short:         "Herramientas de depuración OAuth 1.0a y bearer JWT",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text (env OAUTH1_OUT)")

	root.AddCommand(
		baseStringCmd(&out),
		signCmd(&out),
		headerCmd(&out),
		verifyTokenCmd(&out),
		jwksCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// basestring: arma la signature base string de un request.
func baseStringCmd(out *string) *cobra.Command {
	var method, rawURL string
	var params []string
	cmd := &cobra.Command{
		Use:   "basestring",
		Short: "Calcula la signature base string (RFC 5849 3.4.1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rawURL == "" {
				return fmt.Errorf("--url es requerido")
			}
			vals, err := parseParams(params)
			if err != nil {
				return err
			}
			norm := oauth1.NormalizeValues(vals)
			base, err := oauth1.SignatureBaseString(method, rawURL, norm)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), *out, base, map[string]any{
				"normalized":  norm,
				"base_string": base,
			})
		},
	}
	cmd.Flags().StringVar(&method, "method", "GET", "Método HTTP")
	cmd.Flags().StringVar(&rawURL, "url", "", "URL del endpoint (query incluida)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parámetro k=v (repetible)")
	return cmd
}

// sign: firma una base string ya calculada.
func signCmd(out *string) *cobra.Command {
	var method, base, keyFile string
	consumerSecret := os.Getenv("OAUTH1_CONSUMER_SECRET")
	tokenSecret := os.Getenv("OAUTH1_TOKEN_SECRET")
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Firma una base string con PLAINTEXT, HMAC-SHA1 o RSA-SHA1",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := oauth1.ParseSignatureMethod(method)
			if err != nil {
				return err
			}
			if base == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				base = strings.TrimRight(string(b), "\r\n")
			}
			cred := oauth1.ClientCredential{ConsumerSecret: consumerSecret}
			if keyFile != "" {
				pemBytes, err := os.ReadFile(keyFile)
				if err != nil {
					return fmt.Errorf("leer --private-key-file: %w", err)
				}
				if cred.PrivateKey, err = oauth1.ParseRSAPrivateKey(pemBytes); err != nil {
					return err
				}
			}
			sig, err := oauth1.Sign(m, base, cred, tokenSecret)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), *out, sig, map[string]any{
				"method":    string(m),
				"signature": sig,
			})
		},
	}
	cmd.Flags().StringVar(&method, "method", "HMAC-SHA1", "Método de firma")
	cmd.Flags().StringVar(&base, "base", "-", "Base string (- para leer de stdin)")
	cmd.Flags().StringVar(&consumerSecret, "consumer-secret", consumerSecret, "Consumer secret (env OAUTH1_CONSUMER_SECRET)")
	cmd.Flags().StringVar(&tokenSecret, "token-secret", tokenSecret, "Token secret (env OAUTH1_TOKEN_SECRET)")
	cmd.Flags().StringVar(&keyFile, "private-key-file", "", "PEM RSA para RSA-SHA1")
	return cmd
}

// header: arma el valor del header Authorization a partir de parámetros.
func headerCmd(out *string) *cobra.Command {
	var scheme string
	var params []string
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Arma el header Authorization: OAuth k=\"v\", ...",
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseParams(params)
			if err != nil {
				return err
			}
			m := make(map[string]string, len(vals))
			for k := range vals {
				m[k] = vals.Get(k)
			}
			h := oauth1.AuthorizationHeader(scheme, m)
			return emit(cmd.OutOrStdout(), *out, h, map[string]any{"authorization": h})
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "OAuth", "Esquema del header")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parámetro k=v (repetible)")
	return cmd
}

// verify-token: valida un bearer JWT igual que el gate HTTP.
func verifyTokenCmd(out *string) *cobra.Command {
	var token, pubFile, jwksFile, jwksURL string
	var algs []string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "verify-token",
		Short: "Verifica un JWT de cliente (firma y algoritmo, sin claims temporales)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" || token == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = strings.TrimSpace(string(b))
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			v, err := jwt.NewVerifierFromFiles(ctx, pubFile, jwksFile, jwksURL, algs)
			if err != nil {
				return err
			}
			tok, err := v.Verify(token)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), *out, "ok sub="+tok.Subject(), map[string]any{
				"valid":  true,
				"header": tok.Header,
				"claims": tok.Claims,
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "JWT (o Bearer <jwt>); vacío lee stdin")
	cmd.Flags().StringVar(&pubFile, "public-key", "", "PEM con la clave pública")
	cmd.Flags().StringVar(&jwksFile, "jwks-file", "", "Archivo JWKS")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "URL JWKS remota")
	cmd.Flags().StringSliceVar(&algs, "alg", nil, "Algoritmos permitidos (default según clave)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout para bajar el JWKS")
	return cmd
}

// jwks: convierte una clave pública PEM a JWKS.
func jwksCmd() *cobra.Command {
	var pubFile, kid string
	cmd := &cobra.Command{
		Use:   "jwks",
		Short: "Publica una clave pública PEM como JWKS",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pubFile == "" {
				return fmt.Errorf("--public-key es requerido")
			}
			data, err := os.ReadFile(pubFile)
			if err != nil {
				return err
			}
			pub, err := jwt.ParsePublicKeyPEM(data)
			if err != nil {
				return err
			}
			b, err := jwt.EncodeJWKS(kid, pub)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().StringVar(&pubFile, "public-key", "", "PEM con la clave pública")
	cmd.Flags().StringVar(&kid, "kid", "", "Key ID")
	return cmd
}

func emit(w io.Writer, format, text string, v map[string]any) error {
	if format == "json" {
		p, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(p))
		return err
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
