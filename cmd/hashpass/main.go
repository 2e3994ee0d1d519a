package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/util"
)

// hashpass imprime o hash argon2id de uma senha.
// Com "-" a senha é lida da entrada padrão.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha|->")
		os.Exit(1)
	}

	senha := os.Args[1]
	if senha == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "erro ao ler senha: %v\n", err)
			os.Exit(1)
		}
		senha = strings.TrimRight(line, "\r\n")
	}

	if err := util.ValidatePassword(senha); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
