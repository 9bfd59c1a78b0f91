package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	memlib "github.com/AnishMulay/memfs/clients/library"
	"github.com/AnishMulay/memfs/internal/memfs"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show the attributes of a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			attr, err := c.GetAttr(ctx, args[0])
			if err != nil {
				return err
			}
			printAttr(cmd.OutOrStdout(), args[0], attr)
			return nil
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := "/"
		if len(args) == 1 {
			p = args[0]
		}
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			entries, err := c.ReadDir(ctx, p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %8d %s\n", modeString(e.Attr), e.Attr.Size, e.Name)
			}
			return nil
		})
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			_, err := c.Mkdir(ctx, args[0], mode)
			return err
		})
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Create an empty regular file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			_, err := c.Mknod(ctx, args[0], mode)
			return err
		})
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print the content of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			data, err := c.ReadFile(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <path> [content]",
	Short: "Write content to a file, creating it if needed",
	Long:  "Write content at offset 0 of a file. Without a content argument stdin is read.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		if len(args) == 2 {
			data = []byte(args[1])
		} else {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			return c.WriteFile(ctx, args[0], data)
		})
	},
}

var dfCmd = &cobra.Command{
	Use:   "df",
	Short: "Show volume capacity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *memlib.Client) error {
			st, err := c.StatFs(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "block size: %d\n", st.BlockSize)
			fmt.Fprintf(out, "blocks:     %d total, %d free\n", st.TotalBlocks, st.FreeBlocks)
			fmt.Fprintf(out, "inodes:     %d total, %d free\n", st.TotalInodes, st.FreeInodes)
			fmt.Fprintf(out, "name max:   %d\n", st.NameMax)
			fmt.Fprintf(out, "fsid:       %016x\n", st.FsID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statCmd, lsCmd, mkdirCmd, touchCmd, catCmd, writeCmd, dfCmd)

	mkdirCmd.Flags().String("mode", "0755", "Octal permission bits")
	touchCmd.Flags().String("mode", "0644", "Octal permission bits")
}

func modeFlag(cmd *cobra.Command) (uint32, error) {
	s, err := cmd.Flags().GetString("mode")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return uint32(v), nil
}

func modeString(attr *memfs.Attributes) string {
	const rwx = "rwxrwxrwx"
	b := []byte("----------")
	if attr.IsDir() {
		b[0] = 'd'
	}
	for i := 0; i < 9; i++ {
		if attr.Mode&(1<<uint(8-i)) != 0 {
			b[i+1] = rwx[i]
		}
	}
	return string(b)
}

func printAttr(w io.Writer, p string, attr *memfs.Attributes) {
	fmt.Fprintf(w, "  File: %s\n", p)
	fmt.Fprintf(w, "  Size: %d\tBlocks: %d\tIO Block: %d\t%s\n", attr.Size, attr.Blocks, attr.BlockSize, attr.Kind)
	fmt.Fprintf(w, " Inode: %d\tLinks: %d\n", attr.Ino, attr.Nlink)
	fmt.Fprintf(w, "Access: (%04o/%s)\tUid: %d\tGid: %d\n", attr.Mode&07777, modeString(attr), attr.UID, attr.GID)
	fmt.Fprintf(w, "Access: %s\n", attr.AccessTime.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Modify: %s\n", attr.ModifyTime.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Change: %s\n", attr.ChangeTime.Format(time.RFC3339Nano))
}
