// Command medcrypt-keygen generates a fresh 256-bit cipher key, printed in
// the encoding expected by MEDCRYPT_KEY_SECRET.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/carewise/medcrypt"
)

func main() {
	encoding := flag.String("encoding", "hex", "output encoding: hex or base64")
	flag.Parse()

	key, err := medcrypt.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "medcrypt-keygen: %v\n", err)
		os.Exit(1)
	}

	switch *encoding {
	case "hex":
		fmt.Println(hex.EncodeToString(key))
	case "base64":
		fmt.Println(base64.StdEncoding.EncodeToString(key))
	default:
		fmt.Fprintf(os.Stderr, "medcrypt-keygen: unknown encoding %q\n", *encoding)
		os.Exit(2)
	}
}
