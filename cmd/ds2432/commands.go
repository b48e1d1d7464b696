package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/onewiretools/go-ds2432/eeprom"
	"github.com/onewiretools/go-ds2432/onewire"
	"github.com/onewiretools/go-ds2432/protocol"
)

// deviceFlags are shared by every command that talks to a chip.
func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "device",
			Usage:    "Registration number in sysfs form, e.g. b3-000000fbc90a",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "master",
			Usage: "Numeric w1 bus master ID (see the masters command)",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "Installed 8-byte secret as 16 hex digits (defaults to all zeros)",
		},
		&cli.BoolFlag{
			Name:  "no-crc",
			Usage: "Skip CRC verification of chip replies",
		},
	}
}

// openDevice builds the netlink transport and the driver from the shared
// flags. The caller closes the returned bus.
func openDevice(cmd *cli.Command) (*eeprom.Device, *onewire.Bus, error) {
	if cmd.Bool("verbose") {
		// Raise klog verbosity so the adapter's debug trace is emitted.
		_ = flag.Set("v", "2")
	}

	rom, err := onewire.ParseAddress(cmd.String("device"))
	if err != nil {
		return nil, nil, err
	}
	if rom.Family() != protocol.FamilyCode {
		return nil, nil, fmt.Errorf("device %s is not a DS2432 (family 0x%02X)", rom, rom.Family())
	}

	link, err := onewire.Open(uint32(cmd.Int("master")), rom)
	if err != nil {
		return nil, nil, err
	}

	opts := []eeprom.Option{eeprom.WithLogger(klogAdapter{})}
	if cmd.Bool("no-crc") {
		opts = append(opts, eeprom.WithCRCValidation(false))
	}
	dev := eeprom.New(link, rom.Bytes(), opts...)

	if s := cmd.String("secret"); s != "" {
		secret, err := parseSecret(s)
		if err != nil {
			link.Close()
			return nil, nil, err
		}
		dev.SetSecret(secret)
	}
	return dev, link, nil
}

// parseSecret decodes an 8-byte secret from 16 hex digits.
func parseSecret(s string) ([8]byte, error) {
	var secret [8]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return secret, fmt.Errorf("secret is not valid hex: %w", err)
	}
	if len(raw) != len(secret) {
		return secret, fmt.Errorf("secret must be %d bytes, got %d", len(secret), len(raw))
	}
	copy(secret[:], raw)
	return secret, nil
}

// classify names the failure class for operator-facing messages.
func classify(err error) string {
	switch {
	case eeprom.IsLinkError(err):
		return "link failure"
	case protocol.IsAuthRejected(err):
		return "authorization rejected (wrong secret)"
	case protocol.IsWriteProtected(err):
		return "target is write-protected"
	case eeprom.IsIntegrityError(err):
		return "wire integrity failure (retry may help)"
	case protocol.IsUnknownDisposition(err):
		return "unexpected chip status (retry may help)"
	default:
		return "error"
	}
}

func mastersCommand() *cli.Command {
	return &cli.Command{
		Name:  "masters",
		Usage: "List the numeric IDs of all w1 bus masters",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := onewire.ListMasters()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(os.Stderr, "no w1 bus masters registered")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Read data memory and print it as a hex dump",
		Flags: append(deviceFlags(),
			&cli.IntFlag{Name: "offset", Usage: "First byte to read", Value: 0},
			&cli.IntFlag{Name: "count", Usage: "Number of bytes", Value: protocol.DataMemorySize},
		),
		Action: runReadCommand,
	}
}

func runReadCommand(ctx context.Context, cmd *cli.Command) error {
	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	buf := make([]byte, cmd.Int("count"))
	n, err := dev.Read(int(cmd.Int("offset")), buf)
	if err != nil {
		return fmt.Errorf("%s: %w", classify(err), err)
	}
	fmt.Print(hex.Dump(buf[:n]))
	return nil
}

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Write data memory through the authenticated protocol",
		Flags: append(deviceFlags(),
			&cli.IntFlag{Name: "offset", Usage: "First byte to write", Value: 0},
			&cli.StringFlag{Name: "data", Usage: "Payload as hex digits", Required: true},
		),
		Action: runWriteCommand,
	}
}

func runWriteCommand(ctx context.Context, cmd *cli.Command) error {
	data, err := hex.DecodeString(strings.TrimPrefix(cmd.String("data"), "0x"))
	if err != nil {
		return fmt.Errorf("data is not valid hex: %w", err)
	}

	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	n, err := dev.Write(int(cmd.Int("offset")), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "committed %d of %d bytes\n", n, len(data))
		return fmt.Errorf("%s: %w", classify(err), err)
	}
	fmt.Fprintf(os.Stderr, "committed %d bytes\n", n)
	return nil
}

func secretCommand() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Manage the chip's write-only secret",
		Commands: []*cli.Command{
			{
				Name:  "install",
				Usage: "Install a new secret via Load First Secret",
				Flags: append(deviceFlags(),
					&cli.StringFlag{Name: "new", Usage: "New 8-byte secret as 16 hex digits", Required: true},
				),
				Action: runSecretInstallCommand,
			},
			{
				Name:   "sync",
				Usage:  "Transfer the --secret value into the chip",
				Flags:  deviceFlags(),
				Action: runSecretSyncCommand,
			},
		},
	}
}

func runSecretInstallCommand(ctx context.Context, cmd *cli.Command) error {
	secret, err := parseSecret(cmd.String("new"))
	if err != nil {
		return err
	}

	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	if err := dev.InstallSecret(secret); err != nil {
		return fmt.Errorf("%s: %w", classify(err), err)
	}
	fmt.Fprintln(os.Stderr, "secret installed")
	return nil
}

func runSecretSyncCommand(ctx context.Context, cmd *cli.Command) error {
	if cmd.String("secret") == "" {
		return fmt.Errorf("sync requires --secret")
	}

	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	if err := dev.SyncSecret(); err != nil {
		return fmt.Errorf("%s: %w", classify(err), err)
	}
	fmt.Fprintln(os.Stderr, "secret synchronized")
	return nil
}

func registersCommand() *cli.Command {
	return &cli.Command{
		Name:   "registers",
		Usage:  "Show the register/configuration page",
		Flags:  deviceFlags(),
		Action: runRegistersCommand,
	}
}

func runRegistersCommand(ctx context.Context, cmd *cli.Command) error {
	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	page, err := dev.RegisterPage()
	if err != nil {
		return fmt.Errorf("%s: %w", classify(err), err)
	}

	flag := func(offset int) string {
		if protocol.IsActivationCode(page[offset]) {
			return "active"
		}
		return "inactive"
	}

	fmt.Printf("secret write protection:  %s (0x%02X)\n", flag(protocol.RegWriteProtectSecret), page[protocol.RegWriteProtectSecret])
	fmt.Printf("pages 0-3 write protect:  %s (0x%02X)\n", flag(protocol.RegWriteProtectPages), page[protocol.RegWriteProtectPages])
	fmt.Printf("user byte:                0x%02X\n", page[protocol.RegUserByte])
	fmt.Printf("factory byte:             0x%02X\n", page[protocol.RegFactoryByte])
	fmt.Printf("page 1 EPROM mode:        %s (0x%02X)\n", flag(protocol.RegEPROMModePage1), page[protocol.RegEPROMModePage1])
	fmt.Printf("page 0 write protect:     %s (0x%02X)\n", flag(protocol.RegWriteProtectPage0), page[protocol.RegWriteProtectPage0])
	fmt.Printf("manufacturer ID:          %X\n", page[protocol.RegManufacturerID:protocol.RegManufacturerID+2])
	fmt.Printf("registration number:      %X\n", page[protocol.RegRegistrationNumber:protocol.RegRegistrationNumber+8])
	return nil
}

func readAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "readauth",
		Usage: "Read a page together with the chip's MAC over it",
		Flags: append(deviceFlags(),
			&cli.IntFlag{Name: "page", Usage: "Page number (0-3)", Value: 0},
		),
		Action: runReadAuthCommand,
	}
}

func runReadAuthCommand(ctx context.Context, cmd *cli.Command) error {
	page := cmd.Int("page")
	if page < 0 || page >= protocol.PageCount {
		return fmt.Errorf("page %d out of range 0-%d", page, protocol.PageCount-1)
	}

	dev, link, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer link.Close()

	data, mac, err := dev.ReadAuthPage(uint16(page) * protocol.PageSize)
	if err != nil {
		return fmt.Errorf("%s: %w", classify(err), err)
	}

	fmt.Print(hex.Dump(data[:]))
	wire := mac.Serialize()
	fmt.Printf("chip MAC: %X\n", wire)
	return nil
}
