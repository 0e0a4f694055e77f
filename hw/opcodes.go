package hw

// Opcode describes an entry of the instruction dispatch table.
type Opcode struct {
	Name    string
	Mode    Mode
	Cycles  int  // base cycles, without page crossing or taken branch penalties
	Illegal bool // undocumented opcode
	exec    func(*CPU, operand)
}

// Defined reports whether the opcode can be executed. The CPU halts on
// undefined opcodes.
func (op Opcode) Defined() bool { return op.exec != nil }

// Len returns the instruction length in bytes.
func (op Opcode) Len() int { return op.Mode.Len() }

// LookupOpcode returns the dispatch table entry for the given opcode.
func LookupOpcode(code uint8) Opcode { return ops[code] }

// ops is the instruction dispatch table. JAM opcodes and the unstable
// 0x8B, 0x93, 0x9B, 0x9C, 0x9E, 0x9F and 0xAB are left undefined.
var ops = [256]Opcode{
	0x00: {"BRK", IMP, 7, false, opBRK},
	0x01: {"ORA", IDX, 6, false, opORA},
	0x03: {"SLO", IDX, 8, true, opSLO},
	0x04: {"NOP", ZPG, 3, true, opNOP},
	0x05: {"ORA", ZPG, 3, false, opORA},
	0x06: {"ASL", ZPG, 5, false, opASL},
	0x07: {"SLO", ZPG, 5, true, opSLO},
	0x08: {"PHP", IMP, 3, false, opPHP},
	0x09: {"ORA", IMM, 2, false, opORA},
	0x0A: {"ASL", ACC, 2, false, opASL},
	0x0B: {"ANC", IMM, 2, true, opANC},
	0x0C: {"NOP", ABS, 4, true, opNOP},
	0x0D: {"ORA", ABS, 4, false, opORA},
	0x0E: {"ASL", ABS, 6, false, opASL},
	0x0F: {"SLO", ABS, 6, true, opSLO},

	0x10: {"BPL", REL, 2, false, opBPL},
	0x11: {"ORA", IDY, 5, false, opORA},
	0x13: {"SLO", IDY, 8, true, opSLO},
	0x14: {"NOP", ZPX, 4, true, opNOP},
	0x15: {"ORA", ZPX, 4, false, opORA},
	0x16: {"ASL", ZPX, 6, false, opASL},
	0x17: {"SLO", ZPX, 6, true, opSLO},
	0x18: {"CLC", IMP, 2, false, opCLC},
	0x19: {"ORA", ABY, 4, false, opORA},
	0x1A: {"NOP", IMP, 2, true, opNOP},
	0x1B: {"SLO", ABY, 7, true, opSLO},
	0x1C: {"NOP", ABX, 4, true, opNOP},
	0x1D: {"ORA", ABX, 4, false, opORA},
	0x1E: {"ASL", ABX, 7, false, opASL},
	0x1F: {"SLO", ABX, 7, true, opSLO},

	0x20: {"JSR", ABS, 6, false, opJSR},
	0x21: {"AND", IDX, 6, false, opAND},
	0x23: {"RLA", IDX, 8, true, opRLA},
	0x24: {"BIT", ZPG, 3, false, opBIT},
	0x25: {"AND", ZPG, 3, false, opAND},
	0x26: {"ROL", ZPG, 5, false, opROL},
	0x27: {"RLA", ZPG, 5, true, opRLA},
	0x28: {"PLP", IMP, 4, false, opPLP},
	0x29: {"AND", IMM, 2, false, opAND},
	0x2A: {"ROL", ACC, 2, false, opROL},
	0x2B: {"ANC", IMM, 2, true, opANC},
	0x2C: {"BIT", ABS, 4, false, opBIT},
	0x2D: {"AND", ABS, 4, false, opAND},
	0x2E: {"ROL", ABS, 6, false, opROL},
	0x2F: {"RLA", ABS, 6, true, opRLA},

	0x30: {"BMI", REL, 2, false, opBMI},
	0x31: {"AND", IDY, 5, false, opAND},
	0x33: {"RLA", IDY, 8, true, opRLA},
	0x34: {"NOP", ZPX, 4, true, opNOP},
	0x35: {"AND", ZPX, 4, false, opAND},
	0x36: {"ROL", ZPX, 6, false, opROL},
	0x37: {"RLA", ZPX, 6, true, opRLA},
	0x38: {"SEC", IMP, 2, false, opSEC},
	0x39: {"AND", ABY, 4, false, opAND},
	0x3A: {"NOP", IMP, 2, true, opNOP},
	0x3B: {"RLA", ABY, 7, true, opRLA},
	0x3C: {"NOP", ABX, 4, true, opNOP},
	0x3D: {"AND", ABX, 4, false, opAND},
	0x3E: {"ROL", ABX, 7, false, opROL},
	0x3F: {"RLA", ABX, 7, true, opRLA},

	0x40: {"RTI", IMP, 6, false, opRTI},
	0x41: {"EOR", IDX, 6, false, opEOR},
	0x43: {"SRE", IDX, 8, true, opSRE},
	0x44: {"NOP", ZPG, 3, true, opNOP},
	0x45: {"EOR", ZPG, 3, false, opEOR},
	0x46: {"LSR", ZPG, 5, false, opLSR},
	0x47: {"SRE", ZPG, 5, true, opSRE},
	0x48: {"PHA", IMP, 3, false, opPHA},
	0x49: {"EOR", IMM, 2, false, opEOR},
	0x4A: {"LSR", ACC, 2, false, opLSR},
	0x4B: {"ALR", IMM, 2, true, opALR},
	0x4C: {"JMP", ABS, 3, false, opJMP},
	0x4D: {"EOR", ABS, 4, false, opEOR},
	0x4E: {"LSR", ABS, 6, false, opLSR},
	0x4F: {"SRE", ABS, 6, true, opSRE},

	0x50: {"BVC", REL, 2, false, opBVC},
	0x51: {"EOR", IDY, 5, false, opEOR},
	0x53: {"SRE", IDY, 8, true, opSRE},
	0x54: {"NOP", ZPX, 4, true, opNOP},
	0x55: {"EOR", ZPX, 4, false, opEOR},
	0x56: {"LSR", ZPX, 6, false, opLSR},
	0x57: {"SRE", ZPX, 6, true, opSRE},
	0x58: {"CLI", IMP, 2, false, opCLI},
	0x59: {"EOR", ABY, 4, false, opEOR},
	0x5A: {"NOP", IMP, 2, true, opNOP},
	0x5B: {"SRE", ABY, 7, true, opSRE},
	0x5C: {"NOP", ABX, 4, true, opNOP},
	0x5D: {"EOR", ABX, 4, false, opEOR},
	0x5E: {"LSR", ABX, 7, false, opLSR},
	0x5F: {"SRE", ABX, 7, true, opSRE},

	0x60: {"RTS", IMP, 6, false, opRTS},
	0x61: {"ADC", IDX, 6, false, opADC},
	0x63: {"RRA", IDX, 8, true, opRRA},
	0x64: {"NOP", ZPG, 3, true, opNOP},
	0x65: {"ADC", ZPG, 3, false, opADC},
	0x66: {"ROR", ZPG, 5, false, opROR},
	0x67: {"RRA", ZPG, 5, true, opRRA},
	0x68: {"PLA", IMP, 4, false, opPLA},
	0x69: {"ADC", IMM, 2, false, opADC},
	0x6A: {"ROR", ACC, 2, false, opROR},
	0x6B: {"ARR", IMM, 2, true, opARR},
	0x6C: {"JMP", IND, 5, false, opJMP},
	0x6D: {"ADC", ABS, 4, false, opADC},
	0x6E: {"ROR", ABS, 6, false, opROR},
	0x6F: {"RRA", ABS, 6, true, opRRA},

	0x70: {"BVS", REL, 2, false, opBVS},
	0x71: {"ADC", IDY, 5, false, opADC},
	0x73: {"RRA", IDY, 8, true, opRRA},
	0x74: {"NOP", ZPX, 4, true, opNOP},
	0x75: {"ADC", ZPX, 4, false, opADC},
	0x76: {"ROR", ZPX, 6, false, opROR},
	0x77: {"RRA", ZPX, 6, true, opRRA},
	0x78: {"SEI", IMP, 2, false, opSEI},
	0x79: {"ADC", ABY, 4, false, opADC},
	0x7A: {"NOP", IMP, 2, true, opNOP},
	0x7B: {"RRA", ABY, 7, true, opRRA},
	0x7C: {"NOP", ABX, 4, true, opNOP},
	0x7D: {"ADC", ABX, 4, false, opADC},
	0x7E: {"ROR", ABX, 7, false, opROR},
	0x7F: {"RRA", ABX, 7, true, opRRA},

	0x80: {"NOP", IMM, 2, true, opNOP},
	0x81: {"STA", IDX, 6, false, opSTA},
	0x82: {"NOP", IMM, 2, true, opNOP},
	0x83: {"SAX", IDX, 6, true, opSAX},
	0x84: {"STY", ZPG, 3, false, opSTY},
	0x85: {"STA", ZPG, 3, false, opSTA},
	0x86: {"STX", ZPG, 3, false, opSTX},
	0x87: {"SAX", ZPG, 3, true, opSAX},
	0x88: {"DEY", IMP, 2, false, opDEY},
	0x89: {"NOP", IMM, 2, true, opNOP},
	0x8A: {"TXA", IMP, 2, false, opTXA},
	0x8C: {"STY", ABS, 4, false, opSTY},
	0x8D: {"STA", ABS, 4, false, opSTA},
	0x8E: {"STX", ABS, 4, false, opSTX},
	0x8F: {"SAX", ABS, 4, true, opSAX},

	0x90: {"BCC", REL, 2, false, opBCC},
	0x91: {"STA", IDY, 6, false, opSTA},
	0x94: {"STY", ZPX, 4, false, opSTY},
	0x95: {"STA", ZPX, 4, false, opSTA},
	0x96: {"STX", ZPY, 4, false, opSTX},
	0x97: {"SAX", ZPY, 4, true, opSAX},
	0x98: {"TYA", IMP, 2, false, opTYA},
	0x99: {"STA", ABY, 5, false, opSTA},
	0x9A: {"TXS", IMP, 2, false, opTXS},
	0x9D: {"STA", ABX, 5, false, opSTA},

	0xA0: {"LDY", IMM, 2, false, opLDY},
	0xA1: {"LDA", IDX, 6, false, opLDA},
	0xA2: {"LDX", IMM, 2, false, opLDX},
	0xA3: {"LAX", IDX, 6, true, opLAX},
	0xA4: {"LDY", ZPG, 3, false, opLDY},
	0xA5: {"LDA", ZPG, 3, false, opLDA},
	0xA6: {"LDX", ZPG, 3, false, opLDX},
	0xA7: {"LAX", ZPG, 3, true, opLAX},
	0xA8: {"TAY", IMP, 2, false, opTAY},
	0xA9: {"LDA", IMM, 2, false, opLDA},
	0xAA: {"TAX", IMP, 2, false, opTAX},
	0xAC: {"LDY", ABS, 4, false, opLDY},
	0xAD: {"LDA", ABS, 4, false, opLDA},
	0xAE: {"LDX", ABS, 4, false, opLDX},
	0xAF: {"LAX", ABS, 4, true, opLAX},

	0xB0: {"BCS", REL, 2, false, opBCS},
	0xB1: {"LDA", IDY, 5, false, opLDA},
	0xB3: {"LAX", IDY, 5, true, opLAX},
	0xB4: {"LDY", ZPX, 4, false, opLDY},
	0xB5: {"LDA", ZPX, 4, false, opLDA},
	0xB6: {"LDX", ZPY, 4, false, opLDX},
	0xB7: {"LAX", ZPY, 4, true, opLAX},
	0xB8: {"CLV", IMP, 2, false, opCLV},
	0xB9: {"LDA", ABY, 4, false, opLDA},
	0xBA: {"TSX", IMP, 2, false, opTSX},
	0xBB: {"LAS", ABY, 4, true, opLAS},
	0xBC: {"LDY", ABX, 4, false, opLDY},
	0xBD: {"LDA", ABX, 4, false, opLDA},
	0xBE: {"LDX", ABY, 4, false, opLDX},
	0xBF: {"LAX", ABY, 4, true, opLAX},

	0xC0: {"CPY", IMM, 2, false, opCPY},
	0xC1: {"CMP", IDX, 6, false, opCMP},
	0xC2: {"NOP", IMM, 2, true, opNOP},
	0xC3: {"DCP", IDX, 8, true, opDCP},
	0xC4: {"CPY", ZPG, 3, false, opCPY},
	0xC5: {"CMP", ZPG, 3, false, opCMP},
	0xC6: {"DEC", ZPG, 5, false, opDEC},
	0xC7: {"DCP", ZPG, 5, true, opDCP},
	0xC8: {"INY", IMP, 2, false, opINY},
	0xC9: {"CMP", IMM, 2, false, opCMP},
	0xCA: {"DEX", IMP, 2, false, opDEX},
	0xCB: {"SBX", IMM, 2, true, opSBX},
	0xCC: {"CPY", ABS, 4, false, opCPY},
	0xCD: {"CMP", ABS, 4, false, opCMP},
	0xCE: {"DEC", ABS, 6, false, opDEC},
	0xCF: {"DCP", ABS, 6, true, opDCP},

	0xD0: {"BNE", REL, 2, false, opBNE},
	0xD1: {"CMP", IDY, 5, false, opCMP},
	0xD3: {"DCP", IDY, 8, true, opDCP},
	0xD4: {"NOP", ZPX, 4, true, opNOP},
	0xD5: {"CMP", ZPX, 4, false, opCMP},
	0xD6: {"DEC", ZPX, 6, false, opDEC},
	0xD7: {"DCP", ZPX, 6, true, opDCP},
	0xD8: {"CLD", IMP, 2, false, opCLD},
	0xD9: {"CMP", ABY, 4, false, opCMP},
	0xDA: {"NOP", IMP, 2, true, opNOP},
	0xDB: {"DCP", ABY, 7, true, opDCP},
	0xDC: {"NOP", ABX, 4, true, opNOP},
	0xDD: {"CMP", ABX, 4, false, opCMP},
	0xDE: {"DEC", ABX, 7, false, opDEC},
	0xDF: {"DCP", ABX, 7, true, opDCP},

	0xE0: {"CPX", IMM, 2, false, opCPX},
	0xE1: {"SBC", IDX, 6, false, opSBC},
	0xE2: {"NOP", IMM, 2, true, opNOP},
	0xE3: {"ISB", IDX, 8, true, opISB},
	0xE4: {"CPX", ZPG, 3, false, opCPX},
	0xE5: {"SBC", ZPG, 3, false, opSBC},
	0xE6: {"INC", ZPG, 5, false, opINC},
	0xE7: {"ISB", ZPG, 5, true, opISB},
	0xE8: {"INX", IMP, 2, false, opINX},
	0xE9: {"SBC", IMM, 2, false, opSBC},
	0xEA: {"NOP", IMP, 2, false, opNOP},
	0xEB: {"SBC", IMM, 2, true, opSBC},
	0xEC: {"CPX", ABS, 4, false, opCPX},
	0xED: {"SBC", ABS, 4, false, opSBC},
	0xEE: {"INC", ABS, 6, false, opINC},
	0xEF: {"ISB", ABS, 6, true, opISB},

	0xF0: {"BEQ", REL, 2, false, opBEQ},
	0xF1: {"SBC", IDY, 5, false, opSBC},
	0xF3: {"ISB", IDY, 8, true, opISB},
	0xF4: {"NOP", ZPX, 4, true, opNOP},
	0xF5: {"SBC", ZPX, 4, false, opSBC},
	0xF6: {"INC", ZPX, 6, false, opINC},
	0xF7: {"ISB", ZPX, 6, true, opISB},
	0xF8: {"SED", IMP, 2, false, opSED},
	0xF9: {"SBC", ABY, 4, false, opSBC},
	0xFA: {"NOP", IMP, 2, true, opNOP},
	0xFB: {"ISB", ABY, 7, true, opISB},
	0xFC: {"NOP", ABX, 4, true, opNOP},
	0xFD: {"SBC", ABX, 4, false, opSBC},
	0xFE: {"INC", ABX, 7, false, opINC},
	0xFF: {"ISB", ABX, 7, true, opISB},
}
