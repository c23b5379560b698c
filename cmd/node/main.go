// Command node runs one corvid peer: it maintains a chain, a mempool, and
// a wallet, optionally mines, and serves a dot-command REPL on stdin.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/corvidchain/corvid/config"
	"github.com/corvidchain/corvid/cryptoadapter"
	"github.com/corvidchain/corvid/eventlog"
	"github.com/corvidchain/corvid/logger"
	"github.com/corvidchain/corvid/model"
	"github.com/corvidchain/corvid/node"
	"github.com/corvidchain/corvid/p2p"
	"github.com/corvidchain/corvid/wallet"
)

var build = "develop"

func main() {
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg, help, err := config.Parse(build)
	if err != nil {
		return err
	}
	if help != "" {
		fmt.Println(help)
		return nil
	}

	var w *wallet.Wallet
	if cfg.Node.WalletSeed != "" {
		kp, err := cryptoadapter.KeyPairFromSeed([]byte(cfg.Node.WalletSeed))
		if err != nil {
			return err
		}
		w = wallet.New(kp)
	} else {
		w, err = wallet.Generate()
		if err != nil {
			return err
		}
	}

	evHandler := eventlog.Handler(func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	})

	n, err := node.New(node.Config{Wallet: w, EvHandler: evHandler})
	if err != nil {
		return err
	}

	server := p2p.New(n.HandleMessage, evHandler, cfg.P2P.HandshakeTimeout)
	n.AttachTransport(server)

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.UpgradeHandler)
	go func() {
		if err := http.ListenAndServe(cfg.P2P.Host, mux); err != nil {
			log.Errorw("p2p listen", "ERROR", err)
		}
	}()
	log.Infow("startup", "listening", cfg.P2P.Host, "peerID", server.ID(), "publicKey", n.PublicKey())

	for _, addr := range cfg.P2P.SeedPeers {
		if addr == "" {
			continue
		}
		if err := n.ConnectPeer(addr); err != nil {
			log.Errorw("seed peer dial failed", "peer", addr, "ERROR", err)
		}
	}

	if cfg.Node.AutoMine {
		n.StartMining()
	}

	repl(n)
	return nil
}

// repl runs the interactive dot-command loop against n until .exit or EOF.
func repl(n *node.Node) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if handle(n, strings.TrimSpace(line)) {
			return
		}
	}
}

// handle executes one REPL line and reports whether the loop should exit.
func handle(n *node.Node, line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case ".exit":
		n.StopMining()
		return true

	case ".mine":
		n.StartMining()
		fmt.Println("mining started")

	case ".stop":
		n.StopMining()
		fmt.Println("mining stopped")

	case ".add":
		if len(fields) != 2 {
			fmt.Println("usage: .add <ws://host:port>")
			return false
		}
		if err := n.ConnectPeer(fields[1]); err != nil {
			fmt.Println("error:", err)
		}

	case ".peers":
		for _, addr := range n.PeerAddrs() {
			fmt.Println(addr)
		}

	case ".chain":
		for i, b := range n.ChainSnapshot() {
			fmt.Printf("%d: %s (txs=%d, nonce=%d)\n", i, b.Hash, len(b.Txs), b.Nonce)
		}

	case ".utxos":
		for _, u := range n.UTXOs() {
			fmt.Printf("%s:%d owner=%s amount=%d\n", u.Hash, u.Index, u.PublicKey, u.Amount)
		}

	case ".intervals":
		times := n.BlockTimes()
		for i := 1; i < len(times); i++ {
			fmt.Printf("%d -> %d: %ds\n", i-1, i, times[i]-times[i-1])
		}

	case ".balance":
		fmt.Println(n.Balance())

	case ".key":
		fmt.Println(n.PublicKey())

	case ".send":
		if len(fields) != 3 {
			fmt.Println("usage: .send <amount> <publicKey>")
			return false
		}
		amount, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		tx, err := n.Send(amount, model.PublicKey(fields[2]))
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("sent", tx.Hash)

	case ".pool":
		fmt.Println(n.PoolSize())

	case ".clear":
		n.ClearPool()

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}
