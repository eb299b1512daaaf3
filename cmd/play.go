package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"LrcSync/core/session"
	"LrcSync/logger"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	playStart float64
	playSpeed float64
	playTick  time.Duration
	playWatch bool
)

var (
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	nextStyle    = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// 最后一行之后再播放多久结束
const playTail = 5 * time.Second

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "模拟播放并按时间输出歌词",
	Long: `按模拟时钟逐行输出歌词。播放时在标准输入中输入 + 或 - 后回车可按 DELAY_STEP 调整 timeDelay，
输入 0 恢复文件中的偏移，输入 q 退出。文件被修改时自动重新加载。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		path := args[0]

		doc, err := readDocument(path)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		p := newPlayer(cmd.OutOrStdout(), session.NewManager().Create(path, doc), cfg.DelayStep)

		if playWatch {
			go func() {
				if err := p.watch(ctx, path); err != nil {
					logger.Warn("监听歌词文件失败", logger.String("file", path), logger.ErrorField(err))
				}
			}()
		}
		go p.readCommands(cmd.InOrStdin(), cancel)

		p.run(ctx, playStart, playSpeed, playTick)
		return nil
	},
}

type player struct {
	mu        sync.Mutex // 保护 out
	out       io.Writer
	sess      *session.Session
	step      float64
	fileDelay float64
}

func newPlayer(out io.Writer, sess *session.Session, step float64) *player {
	return &player{out: out, sess: sess, step: step, fileDelay: sess.TimeDelay()}
}

// render 当前行变化时返回要输出的文本，否则返回空串
func (p *player) render(position float64) (string, bool) {
	pos, changed := p.sess.LocateChanged(position)
	if !changed || pos.Current == nil {
		return "", pos.Next == nil && pos.Current != nil
	}

	var b strings.Builder
	b.WriteString(currentStyle.Render(pos.Current.String()))
	b.WriteByte('\n')
	if pos.Next != nil {
		b.WriteString(nextStyle.Render("  " + pos.Next.String()))
		b.WriteByte('\n')
	}
	return b.String(), pos.Next == nil
}

func (p *player) run(ctx context.Context, start, speed float64, tick time.Duration) {
	if speed <= 0 {
		speed = 1
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Debug("开始播放",
		logger.String("track", p.sess.Track()),
		logger.Float64("start", start),
		logger.Duration("tick", tick))

	began := time.Now()
	var endedAt time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			position := start + now.Sub(began).Seconds()*speed
			text, last := p.render(position)
			if text != "" {
				p.print(text)
			}
			if last && endedAt.IsZero() {
				endedAt = now
			}
			if !endedAt.IsZero() && now.Sub(endedAt) >= playTail {
				p.print(statusStyle.Render("播放结束") + "\n")
				return
			}
		}
	}
}

// apply 处理一条交互命令，返回 false 表示退出
func (p *player) apply(command string) bool {
	switch strings.TrimSpace(command) {
	case "+":
		p.status(p.sess.AdjustDelay(p.step))
	case "-":
		p.status(p.sess.AdjustDelay(-p.step))
	case "0":
		p.sess.SetTimeDelay(p.fileDelay)
		p.status(p.sess.TimeDelay())
	case "q":
		return false
	}
	return true
}

func (p *player) print(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, s)
}

func (p *player) status(delay float64) {
	p.print(statusStyle.Render(fmt.Sprintf("timeDelay = %.3fs", delay)) + "\n")
}

func (p *player) readCommands(in io.Reader, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !p.apply(scanner.Text()) {
			quit()
			return
		}
	}
}

// reload 重新解析文件，保留当前 timeDelay
func (p *player) reload(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	doc.SetTimeDelay(p.sess.TimeDelay())
	p.sess.Replace(path, doc)
	p.print(statusStyle.Render(fmt.Sprintf("已重新加载 %s（%d 行）", filepath.Base(path), doc.Len())) + "\n")
	return nil
}

// watch 监听所在目录，编辑器常以重命名方式保存文件
func (p *player) watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := p.reload(abs); err != nil {
				logger.Warn("重新加载歌词失败", logger.String("file", abs), logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("文件监听错误", logger.ErrorField(err))
		}
	}
}

func init() {
	playCmd.Flags().Float64Var(&playStart, "start", 0, "起始播放位置（秒）")
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1, "播放倍速")
	playCmd.Flags().DurationVar(&playTick, "tick", 100*time.Millisecond, "刷新间隔")
	playCmd.Flags().BoolVar(&playWatch, "watch", true, "文件修改时自动重新加载")
	rootCmd.AddCommand(playCmd)
}
