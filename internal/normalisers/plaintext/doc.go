// Package plaintext provides the fallback Normaliser for .txt files.
package plaintext
