package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// flagArgs はサブコマンド名を除いたフラグ部分の引数を返す。
// サブコマンドが省略された場合（例: `todoapp --port 9090`）は引数全体を返す。
func flagArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case string(CommandServe), string(CommandHealthcheck):
		return args[1:]
	default:
		return args
	}
}
