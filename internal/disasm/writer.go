package disasm

import (
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const dataBytesPerLine = 16

// write outputs the disassembled program listing.
func (dis *Disasm) write(w io.Writer) error {
	if err := dis.writeCommentHeader(w); err != nil {
		return err
	}

	var previousLineWasCode bool
	for index := 0; index < len(dis.data); {
		offsetInfo := dis.offsets[index]

		if err := dis.writeLabel(w, index, offsetInfo); err != nil {
			return err
		}

		isCode := offsetInfo.IsType(CodeOffset)
		// print an empty line in case of data after code and vice versa
		if index > 0 && offsetInfo.Label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		if isCode {
			if err := dis.writeCodeLine(w, index, offsetInfo); err != nil {
				return err
			}
			index += 2
			continue
		}

		count, err := dis.writeDataLine(w, index)
		if err != nil {
			return err
		}
		index += count
	}
	return nil
}

// writeCommentHeader writes the program size and CRC32 checksum as comments.
func (dis *Disasm) writeCommentHeader(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; Program size: %d bytes\n", len(dis.data)); err != nil {
		return fmt.Errorf("writing program size: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; CRC32 checksum: %08x\n", crc32.ChecksumIEEE(dis.data)); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; Code base address: $%04x\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	return nil
}

func (dis *Disasm) writeLabel(w io.Writer, index int, offsetInfo offset) error {
	if offsetInfo.Label == "" {
		return nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "%s:\n", offsetInfo.Label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (dis *Disasm) writeCodeLine(w io.Writer, index int, offsetInfo offset) error {
	code := dis.formatInstruction(offsetInfo.Instruction)

	var comments []string
	if dis.options.OffsetComments {
		comments = append(comments, fmt.Sprintf("$%04X", chip8.ProgramStart+index))
	}
	if dis.options.HexComments {
		comments = append(comments, fmt.Sprintf("%02X %02X", dis.data[index], dis.data[index+1]))
	}
	if offsetInfo.Comment != "" {
		comments = append(comments, offsetInfo.Comment)
	}

	var err error
	if len(comments) == 0 {
		_, err = fmt.Fprintf(w, "  %s\n", code)
	} else {
		_, err = fmt.Fprintf(w, "  %-30s ; %s\n", code, strings.Join(comments, "  "))
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	return nil
}

// writeDataLine bundles up to dataBytesPerLine data bytes into a single line and
// returns the number of bytes written. Data stops at code and labels.
func (dis *Disasm) writeDataLine(w io.Writer, startIndex int) (int, error) {
	buf := &strings.Builder{}
	buf.WriteString(".byte ")

	count := 0
	for index := startIndex; index < len(dis.data) && count < dataBytesPerLine; index++ {
		offsetInfo := dis.offsets[index]
		if index > startIndex && (offsetInfo.IsType(CodeOffset) || offsetInfo.Label != "") {
			break
		}
		fmt.Fprintf(buf, "$%02x, ", dis.data[index])
		count++
	}
	line := strings.TrimRight(buf.String(), ", ")

	comment := dis.offsets[startIndex].Comment
	if dis.options.OffsetComments {
		address := fmt.Sprintf("$%04X", chip8.ProgramStart+startIndex)
		if comment == "" {
			comment = address
		} else {
			comment = address + "  " + comment
		}
	}

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(w, "%-32s ; %s\n", line, comment)
	}
	if err != nil {
		return 0, fmt.Errorf("writing data line: %w", err)
	}
	return count, nil
}
