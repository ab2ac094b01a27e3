package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// Generates a random hex key suitable for the SECRET_KEY setting

const defaultKeyBytesLen = 32

func main() {
	n := defaultKeyBytesLen
	if len(os.Args) > 1 {
		parsed, err := strconv.Atoi(os.Args[1])
		if err != nil || parsed < 16 {
			fmt.Fprintln(os.Stderr, "usage: gensecret [bytes], at least 16")
			os.Exit(2)
		}
		n = parsed
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
