package mcpserver

// DocumentFormat describes the structure of every generated document so that
// LLM consumers can navigate them without guessing.
const DocumentFormat = `# coursedocs Document Format

Every generated document is UTF-8 Markdown with YAML front matter followed by
six fixed sections, always in this order.

` + "```" + `markdown
---
title: "Healthcare: Clinical Agents"   # "Healthcare: " prefix only for HealthcareApplicable
category: HealthcareApplicable         # HealthcareApplicable | GeneralTechnical | DomainNeutral
domain_prefix: true
architecture_layers: [Agent, RAG]      # subset of RAG, Agent, Microservices, Security,
                                       # Blockchain, GenAI, Observability
keywords: [patient, clinical]
consolidated: true                     # more than one source transcript
sources: [01_agents_part_1.txt, 02_agents_part_2.txt]
---

# Healthcare: Clinical Agents

## Overview
## Key Concepts
## Architecture Layers
## Content
## Sources
` + "```" + `

## Rules

1. File names are lower-case, hyphen-separated and end with ` + "`" + `.md` + "`" + `.
   Healthcare documents start with ` + "`" + `healthcare-` + "`" + `.
2. **Content** holds the transcript bodies joined by a blank line. For
   HealthcareApplicable documents generic terms are rewritten to clinical ones
   (customer record → patient record, support ticket → clinical case, ...).
3. **Key Concepts** lists up to eight frequent words with their counts.
4. **Sources** lists each input transcript as ` + "`" + `- ` + "`" + "`" + `path` + "`" + "`" + `: Title` + "`" + `.
`
