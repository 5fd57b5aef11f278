package app

import "fmt"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの既定値。
	CommandServe Command = "serve"
	// CommandMigrate は未適用のマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中サーバーの/healthを確認する。
	// シェルを持たないdistrolessイメージのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ParseCommand はos.Args[1:]の先頭からサブコマンドを決定する。
// タイプミスでサーバーが起動しないよう、未知のサブコマンドはエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}
	for _, c := range knownCommands {
		if string(c) == args[0] {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (want one of %v)", args[0], knownCommands)
}
